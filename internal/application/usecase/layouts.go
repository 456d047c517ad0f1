package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/domain/repository"
	"github.com/bnema/panetree/internal/logging"
)

var (
	ErrLayoutNotFound     = errors.New("layout not found")
	ErrLayoutNameRequired = entity.ErrLayoutNameRequired
)

// SaveLayoutUseCase snapshots a window manager's tree under a name.
type SaveLayoutUseCase struct {
	layoutRepo repository.LayoutRepository
}

// NewSaveLayoutUseCase creates a new SaveLayoutUseCase.
func NewSaveLayoutUseCase(layoutRepo repository.LayoutRepository) *SaveLayoutUseCase {
	return &SaveLayoutUseCase{layoutRepo: layoutRepo}
}

// Execute snapshots the manager's current tree and stores it under name.
func (uc *SaveLayoutUseCase) Execute(ctx context.Context, name string, manager *WindowManager) (*entity.Layout, error) {
	log := logging.FromContext(ctx)

	if strings.TrimSpace(name) == "" {
		return nil, ErrLayoutNameRequired
	}
	if manager == nil {
		return nil, fmt.Errorf("window manager is required")
	}

	layout := entity.NewLayout(name, manager.Root())
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("save layout %q: %w", layout.Name, err)
	}

	log.Debug().
		Str("layout", layout.Name).
		Int("pane_count", layout.CountPanes()).
		Int("window_count", layout.CountWindows()).
		Msg("saving layout")

	if err := uc.layoutRepo.SaveLayout(ctx, layout); err != nil {
		return nil, fmt.Errorf("save layout %q: %w", layout.Name, err)
	}
	return layout, nil
}

// RestoreLayoutUseCase loads a stored layout into a window manager.
type RestoreLayoutUseCase struct {
	layoutRepo repository.LayoutRepository
}

// NewRestoreLayoutUseCase creates a new RestoreLayoutUseCase.
func NewRestoreLayoutUseCase(layoutRepo repository.LayoutRepository) *RestoreLayoutUseCase {
	return &RestoreLayoutUseCase{layoutRepo: layoutRepo}
}

// RestoreLayoutOutput describes the outcome of a restore.
type RestoreLayoutOutput struct {
	Layout *entity.Layout
	// Discarded holds the windows of the tree that was replaced.
	Discarded []*entity.Window
}

// Execute replaces the manager's tree with the layout stored under name.
func (uc *RestoreLayoutUseCase) Execute(ctx context.Context, name string, manager *WindowManager) (*RestoreLayoutOutput, error) {
	log := logging.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLayoutNameRequired
	}
	if manager == nil {
		return nil, fmt.Errorf("window manager is required")
	}

	layout, err := uc.layoutRepo.GetLayout(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load layout %q: %w", name, err)
	}
	if layout == nil {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	if layout.Version > entity.LayoutVersion {
		log.Warn().
			Int("version", layout.Version).
			Int("supported", entity.LayoutVersion).
			Str("layout", name).
			Msg("layout written by a newer version")
	}

	discarded, err := manager.SetRootPane(ctx, layout.Root)
	if err != nil {
		return nil, fmt.Errorf("restore layout %q: %w", name, err)
	}

	log.Info().
		Str("layout", name).
		Int("pane_count", layout.CountPanes()).
		Int("window_count", layout.CountWindows()).
		Msg("layout restored")

	return &RestoreLayoutOutput{Layout: layout, Discarded: discarded}, nil
}

// ManageLayoutsUseCase lists and deletes stored layouts.
type ManageLayoutsUseCase struct {
	layoutRepo repository.LayoutRepository
}

// NewManageLayoutsUseCase creates a new ManageLayoutsUseCase.
func NewManageLayoutsUseCase(layoutRepo repository.LayoutRepository) *ManageLayoutsUseCase {
	return &ManageLayoutsUseCase{layoutRepo: layoutRepo}
}

// List returns summary info for all stored layouts.
func (uc *ManageLayoutsUseCase) List(ctx context.Context) ([]entity.LayoutInfo, error) {
	infos, err := uc.layoutRepo.ListLayouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	return infos, nil
}

// Get returns the layout stored under name.
func (uc *ManageLayoutsUseCase) Get(ctx context.Context, name string) (*entity.Layout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLayoutNameRequired
	}
	layout, err := uc.layoutRepo.GetLayout(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load layout %q: %w", name, err)
	}
	if layout == nil {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	return layout, nil
}

// Import stores an externally produced layout after validating it.
func (uc *ManageLayoutsUseCase) Import(ctx context.Context, layout *entity.Layout) error {
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("import layout: %w", err)
	}
	layout.Name = strings.TrimSpace(layout.Name)
	if layout.Version == 0 {
		layout.Version = entity.LayoutVersion
	}
	if layout.SavedAt.IsZero() {
		layout.SavedAt = time.Now()
	}
	if err := uc.layoutRepo.SaveLayout(ctx, layout); err != nil {
		return fmt.Errorf("import layout %q: %w", layout.Name, err)
	}
	logging.FromContext(ctx).Debug().Str("layout", layout.Name).Msg("layout imported")
	return nil
}

// Delete removes the layout stored under name.
func (uc *ManageLayoutsUseCase) Delete(ctx context.Context, name string) error {
	log := logging.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrLayoutNameRequired
	}

	existing, err := uc.layoutRepo.GetLayout(ctx, name)
	if err != nil {
		return fmt.Errorf("load layout %q: %w", name, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}

	if err := uc.layoutRepo.DeleteLayout(ctx, name); err != nil {
		return fmt.Errorf("delete layout %q: %w", name, err)
	}
	log.Info().Str("layout", name).Msg("layout deleted")
	return nil
}

// ManagerLayout exposes a manager's live tree under a fixed layout name.
type ManagerLayout struct {
	Name    string
	Manager *WindowManager
}

// LayoutSnapshot captures the manager's tree as a layout.
func (l ManagerLayout) LayoutSnapshot() *entity.Layout {
	return entity.NewLayout(l.Name, l.Manager.Root())
}
