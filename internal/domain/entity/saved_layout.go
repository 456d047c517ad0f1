package entity

import (
	"errors"
	"strings"
	"time"
)

// LayoutVersion is the current schema version for saved layouts.
// Increment when making breaking changes to the serialization format.
const LayoutVersion = 1

// ErrLayoutNameRequired is returned when a layout is saved or loaded without a name.
var ErrLayoutNameRequired = errors.New("layout name required")

// Layout is a named snapshot of a whole pane tree.
// This is serialized to JSON and stored by a LayoutRepository.
type Layout struct {
	Version int           `json:"version"`
	Name    string        `json:"name"`
	Root    *PaneSnapshot `json:"root"`
	SavedAt time.Time     `json:"saved_at"`
}

// NewLayout snapshots root under the given name.
func NewLayout(name string, root *Pane) *Layout {
	layout := &Layout{
		Version: LayoutVersion,
		Name:    strings.TrimSpace(name),
		SavedAt: time.Now(),
	}
	if root != nil {
		layout.Root = root.Snapshot()
	}
	return layout
}

// Validate checks the name and the tree.
func (l *Layout) Validate() error {
	if l == nil || strings.TrimSpace(l.Name) == "" {
		return ErrLayoutNameRequired
	}
	return l.Root.Validate()
}

// CountPanes returns the number of panes in the layout.
func (l *Layout) CountPanes() int {
	return l.Root.CountPanes()
}

// CountWindows returns the number of windows in the layout.
func (l *Layout) CountWindows() int {
	return l.Root.CountWindows()
}

// LayoutInfo summarizes a saved layout for listings.
type LayoutInfo struct {
	Name        string
	Version     int
	PaneCount   int
	WindowCount int
	SavedAt     time.Time
}

// Info returns the listing summary of the layout.
func (l *Layout) Info() LayoutInfo {
	return LayoutInfo{
		Name:        l.Name,
		Version:     l.Version,
		PaneCount:   l.CountPanes(),
		WindowCount: l.CountWindows(),
		SavedAt:     l.SavedAt,
	}
}
