package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is returned when a snapshot cannot describe a valid tree.
var ErrInvalidSnapshot = errors.New("invalid pane snapshot")

// PaneSnapshot captures a pane and its subtree without parent pointers.
// This is the persisted and transported form of a layout.
type PaneSnapshot struct {
	ID             PaneID           `json:"id" jsonschema:"minLength=1"`
	Direction      Direction        `json:"direction" jsonschema:"enum=Horizontal,enum=Vertical"`
	ActiveWindowID WindowID         `json:"activeWindowId"`
	Size           []float64        `json:"size"`
	Windows        []WindowSnapshot `json:"windows"`
	Children       []*PaneSnapshot  `json:"children"`
}

// WindowSnapshot captures a window's identity and payload.
type WindowSnapshot struct {
	ID   WindowID `json:"id"`
	Data any      `json:"data"`
}

// Snapshot captures the subtree rooted at p. Closing windows are left out:
// they are on their way out and must not come back on restore.
func (p *Pane) Snapshot() *PaneSnapshot {
	snap := &PaneSnapshot{
		ID:             p.ID,
		Direction:      p.Direction,
		ActiveWindowID: p.ActiveWindowID,
		Size:           append(make([]float64, 0, len(p.Size)), p.Size...),
		Windows:        make([]WindowSnapshot, 0, len(p.windows)),
		Children:       make([]*PaneSnapshot, 0, len(p.Children)),
	}
	for _, w := range p.windows {
		if w.IsAlive() {
			snap.Windows = append(snap.Windows, w.Snapshot())
		}
	}
	for _, child := range p.Children {
		snap.Children = append(snap.Children, child.Snapshot())
	}
	return snap
}

// PaneFromSnapshot rebuilds a detached tree from a snapshot, keeping every
// pane and window id. opts are applied to each recreated window.
// The snapshot should pass Validate first.
func PaneFromSnapshot(snap *PaneSnapshot, opts ...WindowOption) *Pane {
	return paneFromSnapshot(snap, nil, opts)
}

func paneFromSnapshot(snap *PaneSnapshot, parent *Pane, opts []WindowOption) *Pane {
	if snap == nil {
		return nil
	}

	pane := NewPane(snap.ID)
	pane.Parent = parent
	pane.ActiveWindowID = snap.ActiveWindowID
	if snap.Direction.Valid() {
		pane.Direction = snap.Direction
	}
	pane.Size = append([]float64(nil), snap.Size...)

	for _, ws := range snap.Windows {
		w := NewWindow(ws.ID, ws.Data, opts...)
		w.parent = pane
		pane.windows = append(pane.windows, w)
	}

	if len(snap.Children) > 0 {
		pane.Children = make([]*Pane, 0, len(snap.Children))
		for _, childSnap := range snap.Children {
			if child := paneFromSnapshot(childSnap, pane, opts); child != nil {
				pane.Children = append(pane.Children, child)
			}
		}
	}
	return pane
}

// Validate checks that the snapshot describes a well-formed tree: unique
// non-empty ids, known directions, one size entry per child, and active ids
// that point at a window of the same pane.
func (s *PaneSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil root", ErrInvalidSnapshot)
	}
	panes := make(map[PaneID]bool)
	windows := make(map[WindowID]bool)

	stack := []*PaneSnapshot{s}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			return fmt.Errorf("%w: nil child", ErrInvalidSnapshot)
		}
		if node.ID == "" {
			return fmt.Errorf("%w: pane without id", ErrInvalidSnapshot)
		}
		if panes[node.ID] {
			return fmt.Errorf("%w: duplicate pane id %q", ErrInvalidSnapshot, node.ID)
		}
		panes[node.ID] = true

		if !node.Direction.Valid() {
			return fmt.Errorf("%w: pane %q has direction %q", ErrInvalidSnapshot, node.ID, node.Direction)
		}
		if len(node.Children) > 0 && len(node.Size) != len(node.Children) {
			return fmt.Errorf("%w: pane %q has %d sizes for %d children",
				ErrInvalidSnapshot, node.ID, len(node.Size), len(node.Children))
		}

		activeFound := node.ActiveWindowID == ""
		for _, w := range node.Windows {
			if w.ID == "" {
				return fmt.Errorf("%w: window without id in pane %q", ErrInvalidSnapshot, node.ID)
			}
			if windows[w.ID] {
				return fmt.Errorf("%w: duplicate window id %q", ErrInvalidSnapshot, w.ID)
			}
			windows[w.ID] = true
			if w.ID == node.ActiveWindowID {
				activeFound = true
			}
		}
		if !activeFound {
			return fmt.Errorf("%w: pane %q active window %q not in pane",
				ErrInvalidSnapshot, node.ID, node.ActiveWindowID)
		}

		stack = append(stack, node.Children...)
	}
	return nil
}

// CountPanes returns the number of panes in the snapshot.
func (s *PaneSnapshot) CountPanes() int {
	if s == nil {
		return 0
	}
	count := 1
	for _, child := range s.Children {
		count += child.CountPanes()
	}
	return count
}

// CountWindows returns the number of windows in the snapshot.
func (s *PaneSnapshot) CountWindows() int {
	if s == nil {
		return 0
	}
	count := len(s.Windows)
	for _, child := range s.Children {
		count += child.CountWindows()
	}
	return count
}
