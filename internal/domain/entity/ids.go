package entity

import "github.com/google/uuid"

// PaneID uniquely identifies a pane within a pane tree.
type PaneID string

// WindowID uniquely identifies a window across the whole tree.
type WindowID string

// IDGenerator is a function that generates unique IDs.
type IDGenerator func() string

// NewID returns a random UUID string. It is the default IDGenerator.
func NewID() string {
	return uuid.NewString()
}

func orDefault(gen IDGenerator) IDGenerator {
	if gen == nil {
		return NewID
	}
	return gen
}
