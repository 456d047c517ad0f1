package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/infrastructure/persistence/sqlite"
)

func TestLazyDB_NotInitializedByDefault(t *testing.T) {
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "layouts.db"))

	assert.False(t, lazy.IsInitialized())
	assert.NoError(t, lazy.Close(), "closing before init is a no-op")
}

func TestLazyDB_ConcurrentAccessSharesConnection(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "layouts.db"))
	t.Cleanup(func() { _ = lazy.Close() })

	const goroutines = 8
	dbs := make([]*sql.DB, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dbs[i], errs[i] = lazy.DB(ctx)
		}()
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Same(t, dbs[0], dbs[i])
	}
	assert.True(t, lazy.IsInitialized())

	var one int
	require.NoError(t, dbs[0].QueryRowContext(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestLazyDB_InitErrorIsSticky(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB("")

	_, err := lazy.DB(ctx)
	require.Error(t, err)
	_, err = lazy.DB(ctx)
	require.Error(t, err)
	assert.False(t, lazy.IsInitialized())
}

func TestLazyLayoutRepository_OpensOnFirstUse(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "layouts.db"))
	t.Cleanup(func() { _ = lazy.Close() })
	repo := sqlite.NewLazyLayoutRepository(lazy)

	assert.False(t, lazy.IsInitialized())

	require.NoError(t, repo.SaveLayout(ctx, sampleLayout("lazy")))
	assert.True(t, lazy.IsInitialized())

	got, err := repo.GetLayout(ctx, "lazy")
	require.NoError(t, err)
	require.NotNil(t, got)

	infos, err := repo.ListLayouts(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)

	require.NoError(t, repo.DeleteLayout(ctx, "lazy"))
}

func TestLazyLayoutRepository_PropagatesInitError(t *testing.T) {
	ctx := testCtx()
	repo := sqlite.NewLazyLayoutRepository(sqlite.NewLazyDB(""))

	assert.Error(t, repo.SaveLayout(ctx, &entity.Layout{Name: "x"}))
	_, err := repo.GetLayout(ctx, "x")
	assert.Error(t, err)
	_, err = repo.ListLayouts(ctx)
	assert.Error(t, err)
	assert.Error(t, repo.DeleteLayout(ctx, "x"))
}
