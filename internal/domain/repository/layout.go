package repository

import (
	"context"

	"github.com/bnema/panetree/internal/domain/entity"
)

// LayoutRepository persists named pane tree layouts.
type LayoutRepository interface {
	// SaveLayout saves or replaces the layout stored under layout.Name.
	SaveLayout(ctx context.Context, layout *entity.Layout) error

	// GetLayout returns the layout stored under name, or nil if none exists.
	GetLayout(ctx context.Context, name string) (*entity.Layout, error)

	// DeleteLayout removes a layout. Deleting a missing layout is not an error.
	DeleteLayout(ctx context.Context, name string) error

	// ListLayouts returns summary info for every stored layout, newest first.
	ListLayouts(ctx context.Context) ([]entity.LayoutInfo, error)
}
