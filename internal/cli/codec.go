package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/panetree/internal/domain/entity"
)

// DecodeLayout accepts either a full layout document or a bare pane snapshot.
// A non-empty name replaces the name stored in the document.
func DecodeLayout(raw []byte, name string) (*entity.Layout, error) {
	var layout entity.Layout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if layout.Root == nil {
		var snap entity.PaneSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("decode pane snapshot: %w", err)
		}
		if snap.ID == "" {
			return nil, fmt.Errorf("decode layout: %w: no root pane", entity.ErrInvalidSnapshot)
		}
		layout.Root = &snap
	}
	if strings.TrimSpace(name) != "" {
		layout.Name = strings.TrimSpace(name)
	}
	return &layout, nil
}
