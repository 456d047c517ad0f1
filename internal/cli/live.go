package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/config"
	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/infrastructure/mainloop"
	"github.com/bnema/panetree/internal/infrastructure/snapshot"
	"github.com/bnema/panetree/internal/logging"
)

// reloadKey coalesces bursts of file events into a single reload.
const reloadKey = "reload"

// LiveLayout keeps a window manager in sync with a snapshot file. Every
// mutation runs on the loop.
type LiveLayout struct {
	app      *App
	loop     *mainloop.Loop
	manager  *usecase.WindowManager
	path     string
	out      io.Writer
	autosave *snapshot.Service
	extent   entity.Extent
	reloads  int
}

// NewLiveLayout creates a live layout for the snapshot file at path. When
// saveAs is set and autosave is enabled, every reload is saved under saveAs
// after the configured debounce.
func (a *App) NewLiveLayout(loop *mainloop.Loop, path, saveAs string, out io.Writer) *LiveLayout {
	l := &LiveLayout{
		app:     a,
		loop:    loop,
		manager: a.NewWindowManager(loop),
		path:    path,
		out:     out,
		extent:  a.Extent(),
	}
	if saveAs != "" && a.Config.Autosave.Enabled {
		l.autosave = snapshot.NewService(
			a.Layouts,
			usecase.ManagerLayout{Name: saveAs, Manager: l.manager},
			loop,
			a.Config.Autosave.Interval(),
		)
	}
	return l
}

// Manager returns the live window manager. Only touch it on the loop.
func (l *LiveLayout) Manager() *usecase.WindowManager {
	return l.manager
}

// Start enables autosave, if configured.
func (l *LiveLayout) Start(ctx context.Context) {
	if l.autosave != nil {
		l.autosave.Start(ctx)
	}
}

// Stop flushes a pending autosave.
func (l *LiveLayout) Stop(ctx context.Context) error {
	if l.autosave == nil {
		return nil
	}
	return l.autosave.Stop(ctx)
}

// ScheduleReload queues a reload on the loop; bursts collapse into one.
func (l *LiveLayout) ScheduleReload(ctx context.Context) {
	l.loop.PostCoalesced(reloadKey, func() {
		if err := l.Reload(ctx); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("path", l.path).Msg("failed to reload layout file")
		}
	})
}

// ApplyConfig picks up a new layout extent and re-lays the tree out.
func (l *LiveLayout) ApplyConfig(ctx context.Context, cfg *config.Config) {
	l.loop.Post(func() {
		l.extent = entity.Extent{Width: cfg.Layout.DefaultWidth, Height: cfg.Layout.DefaultHeight}
		l.manager.DoLayout(ctx, l.extent)
		l.render()
	})
}

// Reload reads the snapshot file, replaces the tree, prunes it, lays it out
// and prints it. A file that fails to parse or validate leaves the tree as is.
// Must run on the loop.
func (l *LiveLayout) Reload(ctx context.Context) error {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", l.path, err)
	}
	layout, err := DecodeLayout(raw, "")
	if err != nil {
		return err
	}
	if _, err := l.manager.SetRootPane(ctx, layout.Root); err != nil {
		return err
	}
	l.manager.ClearEmptyPane(ctx)
	l.manager.DoLayout(ctx, l.extent)
	l.reloads++

	if l.autosave != nil {
		l.autosave.MarkDirty()
	}
	l.render()
	return nil
}

// Reloads returns how many reloads succeeded. Must run on the loop.
func (l *LiveLayout) Reloads() int {
	return l.reloads
}

func (l *LiveLayout) render() {
	if l.out == nil {
		return
	}
	rects := l.manager.Rects(entity.Rect{W: l.extent.Width, H: l.extent.Height})
	fmt.Fprintf(l.out, "%s\n%s\n\n", l.app.Theme.Subtitle.Render(l.path), l.app.Theme.PaneTree(l.manager.Root(), rects))
}
