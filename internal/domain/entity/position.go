package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is the layout axis applied to a pane's children.
type Direction string

const (
	Horizontal Direction = "Horizontal" // Children laid out left to right
	Vertical   Direction = "Vertical"   // Children laid out top to bottom
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Horizontal || d == Vertical
}

// WindowInsertPosition places a window relative to a neighbor window inside a pane.
type WindowInsertPosition string

const (
	InsertLeft  WindowInsertPosition = "Left"
	InsertRight WindowInsertPosition = "Right"
)

// InsertPanePosition places content relative to a pane during split or insert.
type InsertPanePosition string

const (
	PaneTop    InsertPanePosition = "Top"
	PaneRight  InsertPanePosition = "Right"
	PaneBottom InsertPanePosition = "Bottom"
	PaneLeft   InsertPanePosition = "Left"
	PaneMiddle InsertPanePosition = "Middle"
)

var (
	// ErrMiddleSplit is returned when a split is requested at the middle position.
	// A middle drop inserts into the existing pane instead.
	ErrMiddleSplit = errors.New("pane: middle position cannot split a pane")
	// ErrInvalidPosition is returned for position values outside the enum.
	ErrInvalidPosition = errors.New("pane: invalid insert position")
)

// direction returns the axis a split at p produces.
func (p InsertPanePosition) direction() Direction {
	if p == PaneLeft || p == PaneRight {
		return Horizontal
	}
	return Vertical
}

// originalFirst reports whether the existing content keeps the first slot.
func (p InsertPanePosition) originalFirst() bool {
	return p == PaneBottom || p == PaneRight
}

func (p InsertPanePosition) validForSplit() error {
	switch p {
	case PaneTop, PaneRight, PaneBottom, PaneLeft:
		return nil
	case PaneMiddle:
		return ErrMiddleSplit
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPosition, string(p))
	}
}

// ParseInsertPanePosition parses a case-insensitive pane position name.
func ParseInsertPanePosition(s string) (InsertPanePosition, error) {
	for _, p := range []InsertPanePosition{PaneTop, PaneRight, PaneBottom, PaneLeft, PaneMiddle} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPosition, s)
}

// ParseWindowInsertPosition parses "left" or "right", case-insensitive.
func ParseWindowInsertPosition(s string) (WindowInsertPosition, error) {
	switch {
	case strings.EqualFold(s, string(InsertLeft)):
		return InsertLeft, nil
	case strings.EqualFold(s, string(InsertRight)):
		return InsertRight, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
}
