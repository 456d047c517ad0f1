// Package cli wires configuration, storage and use cases for the panetree commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/cli/styles"
	"github.com/bnema/panetree/internal/config"
	"github.com/bnema/panetree/internal/domain/build"
	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/domain/repository"
	"github.com/bnema/panetree/internal/infrastructure/persistence/diskstore"
	"github.com/bnema/panetree/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/panetree/internal/logging"
)

const shortIDLength = 8

// Options are the global flags that shape App construction.
type Options struct {
	// ConfigPath overrides the XDG config file location.
	ConfigPath string
	// LogLevel overrides the configured log level when set.
	LogLevel string
	// Storage overrides the configured storage backend when set.
	Storage string
}

// App holds CLI dependencies.
type App struct {
	Config        *config.Config
	ConfigManager *config.Manager
	Theme         *styles.Theme
	BuildInfo     build.Info
	Layouts       repository.LayoutRepository

	// Use cases
	SaveLayoutUC    *usecase.SaveLayoutUseCase
	RestoreLayoutUC *usecase.RestoreLayoutUseCase
	ManageLayoutsUC *usecase.ManageLayoutsUseCase

	db  *sqlite.LazyDB
	ctx context.Context
}

// NewApp creates a new CLI application with all dependencies.
func NewApp(opts Options) (*App, error) {
	mgr, err := config.NewManager(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()

	logLevel := cfg.Logging.Level
	if opts.LogLevel != "" {
		logLevel = opts.LogLevel
	}
	logger := logging.New(logging.Config{
		Level:      logging.ParseLevel(logLevel),
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
		Output:     os.Stderr,
	})
	ctx := logging.WithContext(context.Background(), logger)

	if opts.Storage != "" && config.StorageBackend(opts.Storage) != cfg.Storage.Backend {
		cfg.Storage.Backend = config.StorageBackend(opts.Storage)
		path, pathErr := defaultStoragePath(cfg.Storage.Backend)
		if pathErr != nil {
			return nil, pathErr
		}
		cfg.Storage.Path = path
	}

	app := &App{
		Config:        cfg,
		ConfigManager: mgr,
		Theme:         styles.NewTheme(),
		ctx:           ctx,
	}

	switch cfg.Storage.Backend {
	case config.StorageBackendDisk:
		app.Layouts = diskstore.NewLayoutRepository(cfg.Storage.Path)
	case config.StorageBackendSQLite:
		app.db = sqlite.NewLazyDB(cfg.Storage.Path)
		app.Layouts = sqlite.NewLazyLayoutRepository(app.db)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	logger.Debug().
		Str("backend", string(cfg.Storage.Backend)).
		Str("path", cfg.Storage.Path).
		Str("config", mgr.ConfigFile()).
		Msg("cli initialized")

	app.SaveLayoutUC = usecase.NewSaveLayoutUseCase(app.Layouts)
	app.RestoreLayoutUC = usecase.NewRestoreLayoutUseCase(app.Layouts)
	app.ManageLayoutsUC = usecase.NewManageLayoutsUseCase(app.Layouts)
	return app, nil
}

func defaultStoragePath(backend config.StorageBackend) (string, error) {
	switch backend {
	case config.StorageBackendDisk:
		return config.GetLayoutsDir()
	case config.StorageBackendSQLite:
		return config.GetDatabaseFile()
	default:
		return "", fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Close releases all resources.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Extent returns the configured default layout extent.
func (a *App) Extent() entity.Extent {
	return entity.Extent{Width: a.Config.Layout.DefaultWidth, Height: a.Config.Layout.DefaultHeight}
}

// ShortID returns the first block of a random UUID. Pane and window ids typed
// on the command line stay short; collisions inside one tree are improbable.
func ShortID() string {
	return uuid.NewString()[:shortIDLength]
}
