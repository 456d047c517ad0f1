package port

import (
	"context"

	"github.com/bnema/panetree/internal/domain/entity"
)

// LayoutProvider exposes the live tree to background savers.
type LayoutProvider interface {
	// LayoutSnapshot returns a layout of the current tree under the provider's
	// layout name. Called on the loop thread.
	LayoutSnapshot() *entity.Layout
}

// LayoutSaver persists a layout.
type LayoutSaver interface {
	SaveLayout(ctx context.Context, layout *entity.Layout) error
}
