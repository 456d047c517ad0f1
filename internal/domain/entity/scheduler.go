package entity

import "time"

// Task is a scheduled one-shot callback.
type Task interface {
	// Cancel prevents the callback from running. It returns false if the
	// callback already ran or was already canceled.
	Cancel() bool
}

// Scheduler runs deferred callbacks on the same thread that mutates the tree.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}
