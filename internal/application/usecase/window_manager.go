package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/logging"
)

var (
	ErrPaneNotFound    = errors.New("pane not found")
	ErrWindowNotFound  = errors.New("window not found")
	ErrPaneHasChildren = errors.New("pane is a container and cannot hold windows")
	// ErrWindowClosing is returned when a closing window is moved or dropped.
	ErrWindowClosing = errors.New("window is closing")
)

// WindowManagerOptions configures a WindowManager.
type WindowManagerOptions struct {
	// IDGenerator produces pane and window ids. Defaults to entity.NewID.
	IDGenerator entity.IDGenerator
	// Scheduler runs deferred window destruction. Nil keeps closed windows
	// Closing until a prune or an explicit Destroy.
	Scheduler entity.Scheduler
	// DestroyAfter overrides entity.DefaultDestroyAfter when positive.
	DestroyAfter time.Duration
}

// WindowManager is the authority over one pane tree. It owns the root pane,
// resolves ids to nodes and drives the tree-wide operations.
// It is not safe for concurrent use; run it on a single loop.
type WindowManager struct {
	root         *entity.Pane
	ids          entity.IDGenerator
	scheduler    entity.Scheduler
	destroyAfter time.Duration
	loaded       map[entity.PaneID]struct{}
}

// NewWindowManager creates an authority holding a single empty root pane.
func NewWindowManager(opts WindowManagerOptions) *WindowManager {
	ids := opts.IDGenerator
	if ids == nil {
		ids = entity.NewID
	}
	destroyAfter := opts.DestroyAfter
	if destroyAfter <= 0 {
		destroyAfter = entity.DefaultDestroyAfter
	}
	return &WindowManager{
		root:         entity.NewPane(entity.PaneID(ids())),
		ids:          ids,
		scheduler:    opts.Scheduler,
		destroyAfter: destroyAfter,
		loaded:       make(map[entity.PaneID]struct{}),
	}
}

// Root returns the current root pane. The pointer is invalidated by SetRootPane.
func (m *WindowManager) Root() *entity.Pane {
	return m.root
}

func (m *WindowManager) windowOptions() []entity.WindowOption {
	return []entity.WindowOption{
		entity.WithScheduler(m.scheduler),
		entity.WithDestroyAfter(m.destroyAfter),
	}
}

// NewWindow creates a detached window wired to the manager's scheduler.
func (m *WindowManager) NewWindow(data any) *entity.Window {
	return entity.NewWindow(entity.WindowID(m.ids()), data, m.windowOptions()...)
}

// FindPane returns the pane with the given id, nil if absent.
func (m *WindowManager) FindPane(id entity.PaneID) *entity.Pane {
	return m.root.FindPane(id)
}

// FindPaneByWindowID returns the pane holding the window, nil if absent.
func (m *WindowManager) FindPaneByWindowID(id entity.WindowID) *entity.Pane {
	return m.root.FindPaneByWindowID(id)
}

// FindWindow returns the window with the given id, nil if absent.
func (m *WindowManager) FindWindow(id entity.WindowID) *entity.Window {
	return m.root.FindWindow(id)
}

// AllWindows returns every window of the tree in depth-first pre-order.
func (m *WindowManager) AllWindows() []*entity.Window {
	return m.root.AllWindows()
}

// Snapshot captures the whole tree.
func (m *WindowManager) Snapshot() *entity.PaneSnapshot {
	return m.root.Snapshot()
}

// SetRootPane replaces the whole tree with one rebuilt from snap. The windows
// of the previous tree are disposed (pending destroy timers canceled) and
// returned so the caller can release their payloads.
func (m *WindowManager) SetRootPane(ctx context.Context, snap *entity.PaneSnapshot) ([]*entity.Window, error) {
	log := logging.FromContext(ctx)

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("replace root: %w", err)
	}

	old := m.root.AllWindows()
	for _, w := range old {
		w.Dispose()
	}

	m.root = entity.PaneFromSnapshot(snap, m.windowOptions()...)
	m.dropStaleLoaded()

	log.Info().
		Str("root_id", string(m.root.ID)).
		Int("pane_count", m.root.PaneCount()).
		Int("window_count", len(m.root.AllWindows())).
		Int("discarded_windows", len(old)).
		Msg("pane tree replaced")

	return old, nil
}

// ClearEmptyPane prunes empty panes from the root and reports whether the
// whole tree ended up empty.
func (m *WindowManager) ClearEmptyPane(ctx context.Context) bool {
	before := m.root.PaneCount()
	empty := m.root.ClearEmptyPanes()
	m.dropStaleLoaded()

	logging.FromContext(ctx).Debug().
		Int("panes_before", before).
		Int("panes_after", m.root.PaneCount()).
		Str("root_id", string(m.root.ID)).
		Bool("empty", empty).
		Msg("pruned pane tree")
	return empty
}

// SplitPane splits the pane with the given id. Middle fails with
// entity.ErrMiddleSplit before anything changes.
func (m *WindowManager) SplitPane(ctx context.Context, paneID entity.PaneID, position entity.InsertPanePosition) (*entity.SplitResult, error) {
	ctx = logging.WithPaneID(ctx, string(paneID))
	log := logging.FromContext(ctx)

	pane := m.root.FindPane(paneID)
	if pane == nil {
		return nil, fmt.Errorf("split %s: %w", paneID, ErrPaneNotFound)
	}

	res, err := pane.SplitPane(position, m.ids)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", paneID, err)
	}

	log.Info().
		Str("position", string(position)).
		Str("new_pane_id", string(res.NewPane.ID)).
		Str("original_pane_id", string(res.OriginalPane.ID)).
		Msg("pane split")
	return res, nil
}

// OpenWindow creates a window holding data and inserts it into the leaf pane
// with the given id, left or right of neighborID (appended when empty).
func (m *WindowManager) OpenWindow(
	ctx context.Context,
	paneID entity.PaneID,
	data any,
	position entity.WindowInsertPosition,
	neighborID entity.WindowID,
) (*entity.Window, error) {
	pane, err := m.leafPane(paneID)
	if err != nil {
		return nil, fmt.Errorf("open window: %w", err)
	}

	w := m.NewWindow(data)
	if !pane.InsertWindow(w, position, neighborID) {
		return nil, fmt.Errorf("open window: neighbor %s: %w", neighborID, ErrWindowNotFound)
	}

	logging.FromContext(ctx).Debug().
		Str("pane_id", string(paneID)).
		Str("window_id", string(w.ID)).
		Msg("window opened")
	return w, nil
}

// MoveWindowInput describes a window move between (or within) panes.
type MoveWindowInput struct {
	WindowID     entity.WindowID
	TargetPaneID entity.PaneID
	Position     entity.WindowInsertPosition
	NeighborID   entity.WindowID // Optional; empty appends
}

// MoveWindow moves a window next to a neighbor in the target pane. Moving a
// window relative to itself is rejected without error. It reports whether the
// tree changed.
func (m *WindowManager) MoveWindow(ctx context.Context, input MoveWindowInput) (bool, error) {
	ctx = logging.WithWindowID(ctx, string(input.WindowID))
	log := logging.FromContext(ctx)

	if input.NeighborID != "" && input.NeighborID == input.WindowID {
		log.Warn().Msg("window cannot be moved relative to itself")
		return false, nil
	}

	w := m.root.FindWindow(input.WindowID)
	if w == nil {
		return false, fmt.Errorf("move %s: %w", input.WindowID, ErrWindowNotFound)
	}
	if !w.IsAlive() {
		return false, fmt.Errorf("move %s: %w", input.WindowID, ErrWindowClosing)
	}
	target, err := m.leafPane(input.TargetPaneID)
	if err != nil {
		return false, fmt.Errorf("move %s: %w", input.WindowID, err)
	}

	moved := w.MoveToOtherPane(target, input.Position, input.NeighborID)
	log.Debug().
		Str("target_pane_id", string(input.TargetPaneID)).
		Str("neighbor_id", string(input.NeighborID)).
		Bool("moved", moved).
		Msg("move window")
	return moved, nil
}

// DropWindow applies a drag and drop of a window onto a pane. Middle moves the
// window into the pane; an edge splits the pane and moves the window into the
// new side. Panes emptied by the move are pruned. It returns the pane now
// holding the window. Closing windows cannot be dropped.
func (m *WindowManager) DropWindow(
	ctx context.Context,
	windowID entity.WindowID,
	paneID entity.PaneID,
	position entity.InsertPanePosition,
) (*entity.Pane, error) {
	ctx = logging.WithWindowID(ctx, string(windowID))
	log := logging.FromContext(ctx)

	w := m.root.FindWindow(windowID)
	if w == nil {
		return nil, fmt.Errorf("drop %s: %w", windowID, ErrWindowNotFound)
	}
	if !w.IsAlive() {
		return nil, fmt.Errorf("drop %s: %w", windowID, ErrWindowClosing)
	}
	position, err := entity.ParseInsertPanePosition(string(position))
	if err != nil {
		return nil, fmt.Errorf("drop %s: %w", windowID, err)
	}

	if position == entity.PaneMiddle {
		target, err := m.leafPane(paneID)
		if err != nil {
			return nil, fmt.Errorf("drop %s: %w", windowID, err)
		}
		if w.Parent() != target {
			w.Move(target)
		}
	} else {
		res, err := m.SplitPane(ctx, paneID, position)
		if err != nil {
			return nil, fmt.Errorf("drop %s: %w", windowID, err)
		}
		w.Move(res.NewPane)
	}
	m.ClearEmptyPane(ctx)

	holder := w.Parent()
	if holder == nil {
		return nil, fmt.Errorf("drop %s: %w", windowID, ErrWindowNotFound)
	}
	log.Debug().
		Str("position", string(position)).
		Str("pane_id", string(holder.ID)).
		Msg("window dropped")
	return holder, nil
}

// CloseWindow starts the close grace period of a window.
func (m *WindowManager) CloseWindow(ctx context.Context, windowID entity.WindowID) error {
	pane := m.root.FindPaneByWindowID(windowID)
	if pane == nil {
		return fmt.Errorf("close %s: %w", windowID, ErrWindowNotFound)
	}
	pane.CloseWindow(windowID)

	ctx = logging.WithWindowID(logging.WithPaneID(ctx, string(pane.ID)), string(windowID))
	logging.FromContext(ctx).Debug().
		Str("active_window_id", string(pane.ActiveWindowID)).
		Msg("window closing")
	return nil
}

// FocusWindow makes an alive window the active window of its pane.
func (m *WindowManager) FocusWindow(_ context.Context, windowID entity.WindowID) error {
	pane := m.root.FindPaneByWindowID(windowID)
	if pane == nil || !pane.SetActiveWindow(windowID) {
		return fmt.Errorf("focus %s: %w", windowID, ErrWindowNotFound)
	}
	return nil
}

// DoLayout rescales every container's weights to the given root extent.
func (m *WindowManager) DoLayout(ctx context.Context, extent entity.Extent) {
	m.root.DoLayoutPane(extent)
	logging.FromContext(ctx).Debug().
		Float64("width", extent.Width).
		Float64("height", extent.Height).
		Msg("layout applied")
}

// Rects returns the rectangle of every leaf pane inside bounds.
func (m *WindowManager) Rects(bounds entity.Rect) map[entity.PaneID]entity.Rect {
	return m.root.LayoutRects(bounds)
}

// AddLoadedPane records that the pane's content has been materialized.
func (m *WindowManager) AddLoadedPane(id entity.PaneID) {
	m.loaded[id] = struct{}{}
}

// RemoveLoadedPane forgets a loaded pane.
func (m *WindowManager) RemoveLoadedPane(id entity.PaneID) {
	delete(m.loaded, id)
}

// IsPaneLoaded reports whether the pane was marked loaded.
func (m *WindowManager) IsPaneLoaded(id entity.PaneID) bool {
	_, ok := m.loaded[id]
	return ok
}

// LoadedPaneIDs returns the loaded pane ids in sorted order.
func (m *WindowManager) LoadedPaneIDs() []entity.PaneID {
	ids := make([]entity.PaneID, 0, len(m.loaded))
	for id := range m.loaded {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *WindowManager) dropStaleLoaded() {
	for id := range m.loaded {
		if m.root.FindPane(id) == nil {
			delete(m.loaded, id)
		}
	}
}

func (m *WindowManager) leafPane(id entity.PaneID) (*entity.Pane, error) {
	pane := m.root.FindPane(id)
	if pane == nil {
		return nil, fmt.Errorf("pane %s: %w", id, ErrPaneNotFound)
	}
	if pane.IsContainer() {
		return nil, fmt.Errorf("pane %s: %w", id, ErrPaneHasChildren)
	}
	return pane, nil
}
