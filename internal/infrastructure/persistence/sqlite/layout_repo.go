package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/domain/repository"
	"github.com/bnema/panetree/internal/logging"
)

const (
	upsertLayoutSQL = `
INSERT INTO layouts (name, version, layout_json, pane_count, window_count, saved_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    version      = excluded.version,
    layout_json  = excluded.layout_json,
    pane_count   = excluded.pane_count,
    window_count = excluded.window_count,
    saved_at     = excluded.saved_at,
    updated_at   = excluded.updated_at`

	getLayoutSQL = `SELECT layout_json FROM layouts WHERE name = ?`

	deleteLayoutSQL = `DELETE FROM layouts WHERE name = ?`

	listLayoutsSQL = `
SELECT name, version, pane_count, window_count, saved_at
FROM layouts
ORDER BY saved_at DESC, name ASC`
)

type layoutRepo struct {
	db *sql.DB
}

// NewLayoutRepository creates a new layout repository.
func NewLayoutRepository(db *sql.DB) repository.LayoutRepository {
	return &layoutRepo{db: db}
}

// SaveLayout saves or replaces a layout.
func (r *layoutRepo) SaveLayout(ctx context.Context, layout *entity.Layout) error {
	log := logging.FromContext(ctx)
	if layout == nil {
		return errors.New("layout cannot be nil")
	}

	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal layout")
		return err
	}

	log.Debug().
		Str("layout", layout.Name).
		Int("pane_count", layout.CountPanes()).
		Int("window_count", layout.CountWindows()).
		Msg("saving layout")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin layout transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			log.Debug().Err(rollbackErr).Msg("layout rollback reported non-terminal error")
		}
	}()

	if _, err := tx.ExecContext(ctx, upsertLayoutSQL,
		layout.Name,
		int64(layout.Version),
		string(layoutJSON),
		int64(layout.CountPanes()),
		int64(layout.CountWindows()),
		layout.SavedAt.UTC(),
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("upsert layout: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit layout transaction: %w", err)
	}

	return nil
}

// GetLayout returns the layout stored under name, or nil if none exists.
func (r *layoutRepo) GetLayout(ctx context.Context, name string) (*entity.Layout, error) {
	var layoutJSON string
	err := r.db.QueryRowContext(ctx, getLayoutSQL, name).Scan(&layoutJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var layout entity.Layout
	if err := json.Unmarshal([]byte(layoutJSON), &layout); err != nil {
		logging.FromContext(ctx).Error().Err(err).
			Str("layout", name).
			Msg("failed to unmarshal layout")
		return nil, err
	}

	return &layout, nil
}

// DeleteLayout removes a layout.
func (r *layoutRepo) DeleteLayout(ctx context.Context, name string) error {
	logging.FromContext(ctx).Debug().Str("layout", name).Msg("deleting layout")
	_, err := r.db.ExecContext(ctx, deleteLayoutSQL, name)
	return err
}

// ListLayouts returns summary info for every stored layout, newest first.
func (r *layoutRepo) ListLayouts(ctx context.Context) ([]entity.LayoutInfo, error) {
	rows, err := r.db.QueryContext(ctx, listLayoutsSQL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	infos := make([]entity.LayoutInfo, 0)
	for rows.Next() {
		var (
			info                            entity.LayoutInfo
			version, paneCount, windowCount int64
		)
		if err := rows.Scan(&info.Name, &version, &paneCount, &windowCount, &info.SavedAt); err != nil {
			return nil, err
		}
		info.Version = int(version)
		info.PaneCount = int(paneCount)
		info.WindowCount = int(windowCount)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
