package entity

import "time"

// DefaultDestroyAfter is the grace period between Close and Destroy.
const DefaultDestroyAfter = 300 * time.Millisecond

// WindowState is the lifecycle state of a window.
type WindowState int

const (
	WindowOpen      WindowState = iota // Alive and selectable
	WindowClosing                      // Closed, waiting for its destroy timer
	WindowDestroyed                    // Removed from its pane (terminal)
)

func (s WindowState) String() string {
	switch s {
	case WindowOpen:
		return "open"
	case WindowClosing:
		return "closing"
	case WindowDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Window is a single content unit (tab) held by exactly one pane.
type Window struct {
	ID   WindowID
	Data any // Owned by the caller, never inspected

	// DestroyAfter is the grace period between Close and the hard removal.
	DestroyAfter time.Duration

	parent      *Pane
	state       WindowState
	scheduler   Scheduler
	destroyTask Task
}

// WindowOption configures a window at creation.
type WindowOption func(*Window)

// WithScheduler sets the scheduler used for the deferred destroy after Close.
// Without one, a closed window stays Closing until Destroy is called or a
// prune discards it.
func WithScheduler(s Scheduler) WindowOption {
	return func(w *Window) { w.scheduler = s }
}

// WithDestroyAfter overrides the close grace period.
func WithDestroyAfter(d time.Duration) WindowOption {
	return func(w *Window) {
		if d >= 0 {
			w.DestroyAfter = d
		}
	}
}

// NewWindow creates an open window that is not attached to any pane.
func NewWindow(id WindowID, data any, opts ...WindowOption) *Window {
	w := &Window{
		ID:           id,
		Data:         data,
		DestroyAfter: DefaultDestroyAfter,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Parent returns the pane currently holding the window, nil when detached.
func (w *Window) Parent() *Pane { return w.parent }

// State returns the lifecycle state.
func (w *Window) State() WindowState { return w.state }

// IsClosed reports whether the window is Closing or Destroyed.
func (w *Window) IsClosed() bool { return w.state != WindowOpen }

// IsAlive reports whether the window is still Open.
func (w *Window) IsAlive() bool { return w.state == WindowOpen }

// Close marks the window Closing and schedules its destruction.
// If it was the active window of its pane, the next alive sibling becomes active.
// Closing an already closed window does nothing.
func (w *Window) Close() {
	if w.state != WindowOpen {
		return
	}
	if p := w.parent; p != nil && p.ActiveWindowID == w.ID {
		p.activateAfter(w.ID)
	}
	w.state = WindowClosing
	if w.scheduler != nil {
		w.destroyTask = w.scheduler.AfterFunc(w.DestroyAfter, func() {
			w.destroyTask = nil
			w.Destroy()
		})
	}
}

// Destroy removes the window from its pane. It returns false if the window was
// already gone from the pane.
func (w *Window) Destroy() bool {
	w.cancelDestroy()
	removed := false
	if w.parent != nil {
		removed = w.parent.RemoveWindow(w.ID) != nil
	}
	w.parent = nil
	w.state = WindowDestroyed
	return removed
}

// Dispose cancels any pending destroy timer and marks the window destroyed
// without touching the pane it belonged to. Used for windows of discarded
// panes and of trees replaced as a whole.
func (w *Window) Dispose() {
	w.cancelDestroy()
	w.parent = nil
	w.state = WindowDestroyed
}

func (w *Window) cancelDestroy() {
	if w.destroyTask != nil {
		w.destroyTask.Cancel()
		w.destroyTask = nil
	}
}

// Move reparents the window to the end of pane.
func (w *Window) Move(pane *Pane) bool {
	return w.MoveToOtherPane(pane, InsertRight, "")
}

// MoveToOtherPane reparents the window into target. With a neighbor id the
// window lands left or right of that neighbor; the neighbor must be an alive
// window of target, otherwise nothing happens. A neighbor id equal to the
// window's own id is rejected. It reports whether the window moved.
func (w *Window) MoveToOtherPane(target *Pane, position WindowInsertPosition, neighborID WindowID) bool {
	if target == nil || w.state == WindowDestroyed {
		return false
	}
	if neighborID != "" && neighborID == w.ID {
		return false
	}

	var neighbor *Window
	if neighborID != "" {
		neighbor = target.aliveWindow(neighborID)
		if neighbor == nil {
			return false
		}
	}

	open := w.state == WindowOpen
	if src := w.parent; src != nil {
		src.releaseWindow(w)
	}

	idx := len(target.windows)
	if neighbor != nil {
		idx = target.windowIndex(neighbor.ID)
		if position != InsertLeft {
			idx++
		}
	}
	target.insertWindowAt(idx, w)
	if open {
		target.ActiveWindowID = w.ID
	}
	return true
}

// Snapshot returns the serializable form of the window.
func (w *Window) Snapshot() WindowSnapshot {
	return WindowSnapshot{ID: w.ID, Data: w.Data}
}
