package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/infrastructure/mainloop"
	"github.com/bnema/panetree/internal/logging"
)

// EditFunc mutates a restored tree.
type EditFunc func(ctx context.Context, m *usecase.WindowManager) error

// NewWindowManager creates an empty authority configured from the app config.
func (a *App) NewWindowManager(scheduler entity.Scheduler) *usecase.WindowManager {
	return usecase.NewWindowManager(usecase.WindowManagerOptions{
		IDGenerator:  ShortID,
		Scheduler:    scheduler,
		DestroyAfter: a.Config.Windows.DestroyDelay(),
	})
}

// destroyGrace is how far the manual clock must advance so every window
// closed during an edit reaches Destroyed.
func (a *App) destroyGrace() time.Duration {
	if d := a.Config.Windows.DestroyDelay(); d > 0 {
		return d
	}
	return entity.DefaultDestroyAfter
}

// CreateLayout stores a fresh tree under name with n windows in its root pane.
func (a *App) CreateLayout(name string, windows int) (*usecase.WindowManager, error) {
	ctx := logging.WithLayout(a.ctx, name)
	m := a.NewWindowManager(nil)
	for i := 0; i < windows; i++ {
		if _, err := m.OpenWindow(ctx, m.Root().ID, nil, entity.InsertRight, ""); err != nil {
			return nil, err
		}
	}
	if _, err := a.SaveLayoutUC.Execute(ctx, name, m); err != nil {
		return nil, err
	}
	return m, nil
}

// EditLayout restores the layout stored under name, applies edit, lets the
// windows closed by edit finish their grace period, prunes, and saves the
// result back under the same name.
func (a *App) EditLayout(name string, edit EditFunc) (*usecase.WindowManager, error) {
	ctx := logging.WithLayout(a.ctx, name)
	clock := mainloop.NewManual()
	m := a.NewWindowManager(clock)

	if _, err := a.RestoreLayoutUC.Execute(ctx, name, m); err != nil {
		return nil, err
	}
	if err := edit(ctx, m); err != nil {
		return nil, err
	}

	destroyed := clock.Advance(a.destroyGrace())
	m.ClearEmptyPane(ctx)
	m.DoLayout(ctx, a.Extent())

	if _, err := a.SaveLayoutUC.Execute(ctx, name, m); err != nil {
		return nil, fmt.Errorf("save edited layout: %w", err)
	}
	logging.FromContext(ctx).Debug().Int("destroyed_windows", destroyed).Msg("layout edited")
	return m, nil
}

// LoadLayout restores the layout stored under name into a fresh authority
// without saving anything.
func (a *App) LoadLayout(name string) (*usecase.WindowManager, error) {
	ctx := logging.WithLayout(a.ctx, name)
	m := a.NewWindowManager(nil)
	if _, err := a.RestoreLayoutUC.Execute(ctx, name, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RenderTree renders the manager's tree with leaf rectangles for the
// configured extent.
func (a *App) RenderTree(m *usecase.WindowManager) string {
	ext := a.Extent()
	rects := m.Rects(entity.Rect{W: ext.Width, H: ext.Height})
	return a.Theme.PaneTree(m.Root(), rects)
}
