package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/config"
	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/infrastructure/mainloop"
)

func newTestApp(t *testing.T, backend string) *App {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	app, err := NewApp(Options{
		ConfigPath: filepath.Join(dir, "config.toml"),
		LogLevel:   "error",
		Storage:    backend,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApp_Backends(t *testing.T) {
	disk := newTestApp(t, "disk")
	assert.Equal(t, config.StorageBackendDisk, disk.Config.Storage.Backend)
	assert.Equal(t, "layouts", filepath.Base(disk.Config.Storage.Path))
	assert.Nil(t, disk.db)

	sql := newTestApp(t, "")
	assert.Equal(t, config.StorageBackendSQLite, sql.Config.Storage.Backend)
	require.NotNil(t, sql.db)
	assert.False(t, sql.db.IsInitialized(), "database opens lazily")
}

func TestNewApp_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	_, err := NewApp(Options{ConfigPath: filepath.Join(dir, "config.toml"), Storage: "tape"})
	assert.Error(t, err)
}

func TestCreateAndEditLayout(t *testing.T) {
	for _, backend := range []string{"disk", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			app := newTestApp(t, backend)

			m, err := app.CreateLayout("work", 2)
			require.NoError(t, err)
			windows := m.AllWindows()
			require.Len(t, windows, 2)
			rootID := m.Root().ID
			w1, w2 := windows[0].ID, windows[1].ID

			// Drop the second window on the right edge: the root splits in two.
			m, err = app.EditLayout("work", func(ctx context.Context, m *usecase.WindowManager) error {
				_, err := m.DropWindow(ctx, w2, rootID, entity.PaneRight)
				return err
			})
			require.NoError(t, err)
			assert.Equal(t, 3, m.Root().PaneCount())
			assert.Equal(t, entity.Horizontal, m.Root().Direction)

			stored, err := app.LoadLayout("work")
			require.NoError(t, err)
			assert.Equal(t, m.Snapshot(), stored.Snapshot())
			assert.Equal(t, w2, stored.Root().Children[1].Windows()[0].ID)

			// Closing it empties the new pane, which is pruned on save.
			m, err = app.EditLayout("work", func(ctx context.Context, m *usecase.WindowManager) error {
				return m.CloseWindow(ctx, w2)
			})
			require.NoError(t, err)
			assert.True(t, m.Root().IsLeaf())
			require.Len(t, m.AllWindows(), 1)
			assert.Equal(t, w1, m.AllWindows()[0].ID)

			infos, err := app.ManageLayoutsUC.List(app.Ctx())
			require.NoError(t, err)
			require.Len(t, infos, 1)
			assert.Equal(t, 1, infos[0].PaneCount)
			assert.Equal(t, 1, infos[0].WindowCount)
		})
	}
}

func TestEditLayout_ErrorLeavesStoredLayout(t *testing.T) {
	app := newTestApp(t, "disk")
	_, err := app.CreateLayout("work", 1)
	require.NoError(t, err)
	before, err := app.ManageLayoutsUC.Get(app.Ctx(), "work")
	require.NoError(t, err)

	_, err = app.EditLayout("work", func(ctx context.Context, m *usecase.WindowManager) error {
		_, err := m.SplitPane(ctx, "missing", entity.PaneTop)
		return err
	})
	assert.ErrorIs(t, err, usecase.ErrPaneNotFound)

	after, err := app.ManageLayoutsUC.Get(app.Ctx(), "work")
	require.NoError(t, err)
	assert.Equal(t, before.Root, after.Root)

	_, err = app.EditLayout("ghost", func(context.Context, *usecase.WindowManager) error { return nil })
	assert.ErrorIs(t, err, usecase.ErrLayoutNotFound)
}

func TestRenderTree(t *testing.T) {
	app := newTestApp(t, "disk")
	m, err := app.CreateLayout("work", 1)
	require.NoError(t, err)

	out := app.RenderTree(m)
	assert.Contains(t, out, string(m.Root().ID))
	assert.Contains(t, out, "1920x1080+0+0")
}

func TestDecodeLayout(t *testing.T) {
	full := []byte(`{"version":1,"name":"work","root":{"id":"p","direction":"Horizontal","activeWindowId":"","size":[],"windows":[],"children":[]}}`)
	layout, err := DecodeLayout(full, "")
	require.NoError(t, err)
	assert.Equal(t, "work", layout.Name)
	assert.Equal(t, entity.PaneID("p"), layout.Root.ID)

	bare := []byte(`{"id":"p","direction":"Vertical","windows":[{"id":"w","data":null}]}`)
	layout, err = DecodeLayout(bare, " renamed ")
	require.NoError(t, err)
	assert.Equal(t, "renamed", layout.Name)
	assert.Equal(t, entity.Vertical, layout.Root.Direction)
	assert.NoError(t, layout.Validate())

	_, err = DecodeLayout([]byte(`{"name":"x"}`), "")
	assert.ErrorIs(t, err, entity.ErrInvalidSnapshot)

	_, err = DecodeLayout([]byte(`not json`), "")
	assert.Error(t, err)
}

func TestLiveLayout_ReloadCoalescesAndAutosaves(t *testing.T) {
	app := newTestApp(t, "disk")
	ctx := app.Ctx()

	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"id": "root", "direction": "Horizontal", "size": [1, 1],
		"children": [
			{"id": "a", "direction": "Horizontal", "activeWindowId": "w1", "windows": [{"id": "w1", "data": "x"}]},
			{"id": "b", "direction": "Horizontal", "windows": []}
		]
	}`), 0o644))

	loop := mainloop.New(0)
	var out bytes.Buffer
	live := app.NewLiveLayout(loop, path, "live", &out)
	live.Start(ctx)

	live.ScheduleReload(ctx)
	live.ScheduleReload(ctx)
	live.ScheduleReload(ctx)
	loop.Drain()

	assert.Equal(t, 1, live.Reloads())
	root := live.Manager().Root()
	assert.True(t, root.IsLeaf(), "empty sibling pruned and the survivor merged up")
	assert.Equal(t, entity.PaneID("a"), root.ID)
	assert.Contains(t, out.String(), "w1")

	require.NoError(t, live.Stop(ctx))
	saved, err := app.ManageLayoutsUC.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.CountWindows())
}

func TestLiveLayout_InvalidFileKeepsTree(t *testing.T) {
	app := newTestApp(t, "disk")
	ctx := app.Ctx()
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"p","direction":"Diagonal"}`), 0o644))

	live := app.NewLiveLayout(mainloop.New(0), path, "", nil)
	before := live.Manager().Snapshot()

	err := live.Reload(ctx)
	assert.ErrorIs(t, err, entity.ErrInvalidSnapshot)
	assert.Equal(t, before, live.Manager().Snapshot())
	assert.Equal(t, 0, live.Reloads())
	assert.NoError(t, live.Stop(ctx), "no autosave without a name")
}

func TestLiveLayout_ApplyConfig(t *testing.T) {
	app := newTestApp(t, "disk")
	loop := mainloop.New(0)
	var out bytes.Buffer
	live := app.NewLiveLayout(loop, "tree.json", "", &out)

	cfg := config.DefaultConfig()
	cfg.Layout.DefaultWidth = 640
	cfg.Layout.DefaultHeight = 480
	live.ApplyConfig(app.Ctx(), cfg)
	loop.Drain()

	assert.Contains(t, out.String(), "640x480+0+0")
}
