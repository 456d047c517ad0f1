package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/infrastructure/mainloop"
	"github.com/bnema/panetree/internal/logging"
)

func testContext() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

// mockIDGenerator returns "id-1", "id-2", ... like a deterministic uuid source.
func mockIDGenerator() entity.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestManager(t *testing.T) (*usecase.WindowManager, *mainloop.Manual) {
	t.Helper()
	sched := mainloop.NewManual()
	m := usecase.NewWindowManager(usecase.WindowManagerOptions{
		IDGenerator: mockIDGenerator(),
		Scheduler:   sched,
	})
	return m, sched
}

func openWindows(t *testing.T, m *usecase.WindowManager, paneID entity.PaneID, n int) []*entity.Window {
	t.Helper()
	ctx := testContext()
	out := make([]*entity.Window, 0, n)
	for i := 0; i < n; i++ {
		w, err := m.OpenWindow(ctx, paneID, fmt.Sprintf("data-%d", i), entity.InsertRight, "")
		require.NoError(t, err)
		out = append(out, w)
	}
	return out
}

func TestWindowManager_NewHasEmptyRoot(t *testing.T) {
	m, _ := newTestManager(t)

	root := m.Root()
	require.NotNil(t, root)
	assert.Equal(t, entity.PaneID("id-1"), root.ID)
	assert.True(t, root.IsLeaf())
	assert.Empty(t, m.AllWindows())
	assert.Same(t, root, m.FindPane("id-1"))
	assert.Nil(t, m.FindPane("missing"))
}

func TestWindowManager_OpenWindow(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID

	ws := openWindows(t, m, rootID, 2)
	assert.Equal(t, m.Root().ActiveWindowID, ws[1].ID)

	left, err := m.OpenWindow(ctx, rootID, "left", entity.InsertLeft, ws[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []*entity.Window{left, ws[0], ws[1]}, m.Root().Windows())

	_, err = m.OpenWindow(ctx, rootID, nil, entity.InsertLeft, "ghost")
	require.ErrorIs(t, err, usecase.ErrWindowNotFound)
	assert.Len(t, m.Root().Windows(), 3)

	_, err = m.OpenWindow(ctx, "missing", nil, entity.InsertRight, "")
	require.ErrorIs(t, err, usecase.ErrPaneNotFound)
}

func TestWindowManager_OpenWindowRejectsContainer(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID

	_, err := m.SplitPane(ctx, rootID, entity.PaneRight)
	require.NoError(t, err)

	_, err = m.OpenWindow(ctx, rootID, nil, entity.InsertRight, "")
	assert.ErrorIs(t, err, usecase.ErrPaneHasChildren)
}

func TestWindowManager_SplitPane(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 2)

	res, err := m.SplitPane(ctx, rootID, entity.PaneBottom)
	require.NoError(t, err)

	assert.Equal(t, entity.Vertical, m.Root().Direction)
	assert.Equal(t, []float64{100, 100}, m.Root().Size)
	assert.Same(t, res.OriginalPane, m.FindPaneByWindowID(ws[0].ID))
	assert.Same(t, res.NewPane, m.Root().Children[1])

	_, err = m.SplitPane(ctx, res.NewPane.ID, entity.PaneMiddle)
	assert.ErrorIs(t, err, entity.ErrMiddleSplit)
	assert.True(t, res.NewPane.IsLeaf(), "failed split mutates nothing")

	_, err = m.SplitPane(ctx, "missing", entity.PaneLeft)
	assert.ErrorIs(t, err, usecase.ErrPaneNotFound)
}

func TestWindowManager_MoveWindow(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 3)

	res, err := m.SplitPane(ctx, rootID, entity.PaneRight)
	require.NoError(t, err)
	src, dst := res.OriginalPane, res.NewPane

	moved, err := m.MoveWindow(ctx, usecase.MoveWindowInput{
		WindowID:     ws[2].ID,
		TargetPaneID: dst.ID,
		Position:     entity.InsertRight,
	})
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Same(t, dst, ws[2].Parent())
	assert.Equal(t, ws[2].ID, dst.ActiveWindowID)
	assert.Equal(t, ws[0].ID, src.ActiveWindowID, "active w3 leaving wraps to first alive")

	moved, err = m.MoveWindow(ctx, usecase.MoveWindowInput{
		WindowID:     ws[0].ID,
		TargetPaneID: dst.ID,
		Position:     entity.InsertLeft,
		NeighborID:   ws[2].ID,
	})
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []*entity.Window{ws[0], ws[2]}, dst.Windows())
}

func TestWindowManager_MoveWindowRelativeToItself(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 2)
	before := m.Snapshot()

	moved, err := m.MoveWindow(ctx, usecase.MoveWindowInput{
		WindowID:     ws[0].ID,
		TargetPaneID: rootID,
		Position:     entity.InsertLeft,
		NeighborID:   ws[0].ID,
	})

	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, before, m.Snapshot())
}

func TestWindowManager_MoveWindowErrors(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 1)

	_, err := m.MoveWindow(ctx, usecase.MoveWindowInput{WindowID: "ghost", TargetPaneID: rootID})
	assert.ErrorIs(t, err, usecase.ErrWindowNotFound)

	_, err = m.MoveWindow(ctx, usecase.MoveWindowInput{WindowID: ws[0].ID, TargetPaneID: "nowhere"})
	assert.ErrorIs(t, err, usecase.ErrPaneNotFound)

	moved, err := m.MoveWindow(ctx, usecase.MoveWindowInput{
		WindowID:     ws[0].ID,
		TargetPaneID: rootID,
		NeighborID:   "ghost",
	})
	require.NoError(t, err)
	assert.False(t, moved, "unknown neighbor is a no-op")
}

func TestWindowManager_DropWindow(t *testing.T) {
	t.Run("edge splits and moves", func(t *testing.T) {
		ctx := testContext()
		m, _ := newTestManager(t)
		rootID := m.Root().ID
		ws := openWindows(t, m, rootID, 2)

		holder, err := m.DropWindow(ctx, ws[1].ID, rootID, entity.PaneLeft)
		require.NoError(t, err)

		root := m.Root()
		require.Len(t, root.Children, 2)
		assert.Same(t, holder, root.Children[0])
		assert.Equal(t, []*entity.Window{ws[1]}, holder.Windows())
		assert.Equal(t, []*entity.Window{ws[0]}, root.Children[1].Windows())
		assert.Equal(t, entity.Horizontal, root.Direction)
	})

	t.Run("middle moves into pane", func(t *testing.T) {
		ctx := testContext()
		m, _ := newTestManager(t)
		rootID := m.Root().ID
		ws := openWindows(t, m, rootID, 2)
		res, err := m.SplitPane(ctx, rootID, entity.PaneRight)
		require.NoError(t, err)

		holder, err := m.DropWindow(ctx, ws[0].ID, res.NewPane.ID, entity.PaneMiddle)
		require.NoError(t, err)
		assert.Same(t, res.NewPane, holder)
		assert.Equal(t, ws[0].ID, holder.ActiveWindowID)
	})

	t.Run("draining a pane prunes it", func(t *testing.T) {
		ctx := testContext()
		m, _ := newTestManager(t)
		rootID := m.Root().ID
		ws := openWindows(t, m, rootID, 1)
		res, err := m.SplitPane(ctx, rootID, entity.PaneRight)
		require.NoError(t, err)
		_, err = m.OpenWindow(ctx, res.NewPane.ID, "other", entity.InsertRight, "")
		require.NoError(t, err)

		_, err = m.DropWindow(ctx, ws[0].ID, res.NewPane.ID, "middle")
		require.NoError(t, err)

		root := m.Root()
		assert.True(t, root.IsLeaf(), "single surviving child merges up")
		assert.Equal(t, res.NewPane.ID, root.ID, "root adopts the survivor id")
		assert.Len(t, root.Windows(), 2)
	})

	t.Run("invalid input", func(t *testing.T) {
		ctx := testContext()
		m, _ := newTestManager(t)
		rootID := m.Root().ID
		ws := openWindows(t, m, rootID, 1)

		_, err := m.DropWindow(ctx, "ghost", rootID, entity.PaneTop)
		assert.ErrorIs(t, err, usecase.ErrWindowNotFound)
		_, err = m.DropWindow(ctx, ws[0].ID, rootID, "Diagonal")
		assert.ErrorIs(t, err, entity.ErrInvalidPosition)
		_, err = m.DropWindow(ctx, ws[0].ID, "nowhere", entity.PaneTop)
		assert.ErrorIs(t, err, usecase.ErrPaneNotFound)
	})

	t.Run("closing window on an edge is rejected", func(t *testing.T) {
		ctx := testContext()
		m, _ := newTestManager(t)
		rootID := m.Root().ID
		ws := openWindows(t, m, rootID, 2)
		require.NoError(t, m.CloseWindow(ctx, ws[0].ID))
		before := m.Snapshot()

		var err error
		require.NotPanics(t, func() {
			_, err = m.DropWindow(ctx, ws[0].ID, rootID, entity.PaneRight)
		})
		assert.ErrorIs(t, err, usecase.ErrWindowClosing)
		assert.Equal(t, before, m.Snapshot())
		assert.Same(t, m.Root(), ws[0].Parent())
		assert.Equal(t, entity.WindowClosing, ws[0].State())
	})

	t.Run("closing window into an empty leaf is rejected", func(t *testing.T) {
		ctx := testContext()
		m, _ := newTestManager(t)
		rootID := m.Root().ID
		ws := openWindows(t, m, rootID, 2)
		res, err := m.SplitPane(ctx, rootID, entity.PaneBottom)
		require.NoError(t, err)
		require.NoError(t, m.CloseWindow(ctx, ws[1].ID))

		require.NotPanics(t, func() {
			_, err = m.DropWindow(ctx, ws[1].ID, res.NewPane.ID, entity.PaneMiddle)
		})
		assert.ErrorIs(t, err, usecase.ErrWindowClosing)
		assert.Same(t, res.OriginalPane, ws[1].Parent())
		assert.Empty(t, res.NewPane.Windows())
	})
}

func TestWindowManager_MoveWindowRejectsClosing(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 2)
	res, err := m.SplitPane(ctx, rootID, entity.PaneRight)
	require.NoError(t, err)
	require.NoError(t, m.CloseWindow(ctx, ws[1].ID))

	moved, err := m.MoveWindow(ctx, usecase.MoveWindowInput{WindowID: ws[1].ID, TargetPaneID: res.NewPane.ID})
	assert.ErrorIs(t, err, usecase.ErrWindowClosing)
	assert.False(t, moved)
	assert.Same(t, res.OriginalPane, ws[1].Parent())
}

func TestWindowManager_CloseWindowDestroysAfterDelay(t *testing.T) {
	ctx := testContext()
	m, sched := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 3)

	require.NoError(t, m.CloseWindow(ctx, ws[2].ID))
	assert.Equal(t, ws[0].ID, m.Root().ActiveWindowID)
	assert.Equal(t, entity.WindowClosing, ws[2].State())
	assert.Same(t, m.Root(), m.FindPaneByWindowID(ws[2].ID), "closing windows stay findable")

	sched.Advance(entity.DefaultDestroyAfter)
	assert.Nil(t, m.FindWindow(ws[2].ID))
	assert.Len(t, m.AllWindows(), 2)

	assert.ErrorIs(t, m.CloseWindow(ctx, "ghost"), usecase.ErrWindowNotFound)
}

func TestWindowManager_DestroyDelayOption(t *testing.T) {
	ctx := testContext()
	sched := mainloop.NewManual()
	m := usecase.NewWindowManager(usecase.WindowManagerOptions{
		IDGenerator:  mockIDGenerator(),
		Scheduler:    sched,
		DestroyAfter: time.Second,
	})
	ws := openWindows(t, m, m.Root().ID, 1)

	require.NoError(t, m.CloseWindow(ctx, ws[0].ID))
	sched.Advance(entity.DefaultDestroyAfter)
	assert.NotNil(t, m.FindWindow(ws[0].ID))
	sched.Advance(time.Second)
	assert.Nil(t, m.FindWindow(ws[0].ID))
}

func TestWindowManager_FocusWindow(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	ws := openWindows(t, m, m.Root().ID, 2)

	require.NoError(t, m.FocusWindow(ctx, ws[0].ID))
	assert.Equal(t, ws[0].ID, m.Root().ActiveWindowID)

	require.NoError(t, m.CloseWindow(ctx, ws[1].ID))
	assert.ErrorIs(t, m.FocusWindow(ctx, ws[1].ID), usecase.ErrWindowNotFound)
}

func TestWindowManager_SetRootPaneRoundTrip(t *testing.T) {
	ctx := testContext()
	m, sched := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 3)
	_, err := m.DropWindow(ctx, ws[2].ID, rootID, entity.PaneBottom)
	require.NoError(t, err)
	require.NoError(t, m.CloseWindow(ctx, ws[0].ID))
	require.Equal(t, 1, sched.Pending())

	snap := m.Snapshot()
	oldRoot := m.Root()

	discarded, err := m.SetRootPane(ctx, snap)
	require.NoError(t, err)

	assert.Len(t, discarded, 3, "every previous window is handed back")
	for _, w := range discarded {
		assert.Equal(t, entity.WindowDestroyed, w.State())
	}
	assert.Equal(t, 0, sched.Pending(), "pending destroy timers are canceled")

	assert.NotSame(t, oldRoot, m.Root())
	assert.Equal(t, snap, m.Snapshot())
	assert.Len(t, m.AllWindows(), 2, "closing windows are not restored")
	for _, w := range m.AllWindows() {
		assert.Same(t, m.FindPaneByWindowID(w.ID), w.Parent())
	}
}

func TestWindowManager_SetRootPaneRejectsInvalidSnapshot(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	ws := openWindows(t, m, m.Root().ID, 1)
	oldRoot := m.Root()

	_, err := m.SetRootPane(ctx, &entity.PaneSnapshot{ID: "p", Direction: "Diagonal"})
	require.ErrorIs(t, err, entity.ErrInvalidSnapshot)
	assert.Same(t, oldRoot, m.Root())
	assert.Equal(t, entity.WindowOpen, ws[0].State())

	_, err = m.SetRootPane(ctx, nil)
	assert.ErrorIs(t, err, entity.ErrInvalidSnapshot)
}

func TestWindowManager_RestoredWindowsUseScheduler(t *testing.T) {
	ctx := testContext()
	m, sched := newTestManager(t)

	_, err := m.SetRootPane(ctx, &entity.PaneSnapshot{
		ID:             "restored",
		Direction:      entity.Horizontal,
		ActiveWindowID: "w1",
		Windows:        []entity.WindowSnapshot{{ID: "w1", Data: "x"}},
	})
	require.NoError(t, err)

	require.NoError(t, m.CloseWindow(ctx, "w1"))
	assert.Equal(t, 1, sched.Pending())
	sched.Advance(entity.DefaultDestroyAfter)
	assert.Nil(t, m.FindWindow("w1"))
}

func TestWindowManager_ClearEmptyPane(t *testing.T) {
	ctx := testContext()
	m, sched := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 1)

	res, err := m.SplitPane(ctx, rootID, entity.PaneRight)
	require.NoError(t, err)
	_, err = m.SplitPane(ctx, res.NewPane.ID, entity.PaneBottom)
	require.NoError(t, err)
	require.Equal(t, 5, m.Root().PaneCount())

	assert.False(t, m.ClearEmptyPane(ctx))
	root := m.Root()
	assert.True(t, root.IsLeaf())
	assert.Equal(t, res.OriginalPane.ID, root.ID)
	assert.Equal(t, []*entity.Window{ws[0]}, root.Windows())

	require.NoError(t, m.CloseWindow(ctx, ws[0].ID))
	assert.True(t, m.ClearEmptyPane(ctx))
	sched.Advance(time.Second)
	assert.Empty(t, m.AllWindows())
}

func TestWindowManager_LoadedPanes(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID
	openWindows(t, m, rootID, 1)

	res, err := m.SplitPane(ctx, rootID, entity.PaneRight)
	require.NoError(t, err)

	m.AddLoadedPane(res.NewPane.ID)
	m.AddLoadedPane(res.OriginalPane.ID)
	assert.True(t, m.IsPaneLoaded(res.NewPane.ID))
	assert.ElementsMatch(t, []entity.PaneID{res.NewPane.ID, res.OriginalPane.ID}, m.LoadedPaneIDs())

	m.RemoveLoadedPane(res.OriginalPane.ID)
	assert.False(t, m.IsPaneLoaded(res.OriginalPane.ID))

	m.ClearEmptyPane(ctx)
	assert.False(t, m.IsPaneLoaded(res.NewPane.ID), "pruned panes are forgotten")
	assert.Empty(t, m.LoadedPaneIDs())
}

func TestWindowManager_LayoutAndRects(t *testing.T) {
	ctx := testContext()
	m, _ := newTestManager(t)
	rootID := m.Root().ID
	openWindows(t, m, rootID, 1)
	res, err := m.SplitPane(ctx, rootID, entity.PaneRight)
	require.NoError(t, err)

	m.DoLayout(ctx, entity.Extent{Width: 300, Height: 100})
	assert.Equal(t, []float64{150, 150}, m.Root().Size)
	assert.InDelta(t, 300, m.Root().Size[0]+m.Root().Size[1], 0)

	rects := m.Rects(entity.Rect{W: 300, H: 100})
	require.Len(t, rects, 2)
	assert.Equal(t, entity.Rect{X: 0, Y: 0, W: 150, H: 100}, rects[res.OriginalPane.ID])
	assert.Equal(t, entity.Rect{X: 150, Y: 0, W: 150, H: 100}, rects[res.NewPane.ID])
}

func TestWindowManager_IndependentInstances(t *testing.T) {
	ctx := testContext()
	a, _ := newTestManager(t)
	b, _ := newTestManager(t)

	_, err := a.OpenWindow(ctx, a.Root().ID, nil, entity.InsertRight, "")
	require.NoError(t, err)

	assert.Len(t, a.AllWindows(), 1)
	assert.Empty(t, b.AllWindows())
}

func TestWindowManager_LogsCarryPaneAndWindowIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.WithContext(context.Background(), zerolog.New(&buf).Level(zerolog.DebugLevel))
	m, _ := newTestManager(t)
	rootID := m.Root().ID
	ws := openWindows(t, m, rootID, 2)

	_, err := m.SplitPane(ctx, rootID, entity.PaneTop)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"pane_id":"`+string(rootID)+`"`)

	buf.Reset()
	require.NoError(t, m.CloseWindow(ctx, ws[1].ID))
	assert.Contains(t, buf.String(), `"window_id":"`+string(ws[1].ID)+`"`)
	assert.Contains(t, buf.String(), `"pane_id":"`)
}
