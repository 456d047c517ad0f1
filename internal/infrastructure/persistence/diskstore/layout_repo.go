// Package diskstore stores pane tree layouts as JSON files, one per layout.
package diskstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/domain/repository"
	"github.com/bnema/panetree/internal/logging"
)

const (
	layoutDir     = "layouts"
	fileExtension = ".json"
	cacheSizeMax  = 1024 * 1024 // 1MB
)

type layoutRepo struct {
	d *diskv.Diskv
}

// NewLayoutRepository creates a layout repository rooted at basePath.
func NewLayoutRepository(basePath string) repository.LayoutRepository {
	return &layoutRepo{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      cacheSizeMax,
	})}
}

func (r *layoutRepo) SaveLayout(ctx context.Context, layout *entity.Layout) error {
	if layout == nil {
		return errors.New("layout cannot be nil")
	}
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug().
		Str("layout", layout.Name).
		Int("bytes", len(data)).
		Msg("writing layout file")
	return r.d.Write(toKey(layout.Name), data)
}

func (r *layoutRepo) GetLayout(ctx context.Context, name string) (*entity.Layout, error) {
	key := toKey(name)
	if !r.d.Has(key) {
		return nil, nil
	}
	layout, err := r.read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("layout", name).Msg("failed to read layout file")
		return nil, err
	}
	return layout, nil
}

func (r *layoutRepo) DeleteLayout(ctx context.Context, name string) error {
	key := toKey(name)
	if !r.d.Has(key) {
		return nil
	}
	logging.FromContext(ctx).Debug().Str("layout", name).Msg("erasing layout file")
	return r.d.Erase(key)
}

func (r *layoutRepo) ListLayouts(ctx context.Context) ([]entity.LayoutInfo, error) {
	log := logging.FromContext(ctx)
	infos := make([]entity.LayoutInfo, 0)
	for key := range r.d.Keys(ctx.Done()) {
		layout, err := r.read(key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping unreadable layout file")
			continue
		}
		infos = append(infos, layout.Info())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].SavedAt.Equal(infos[j].SavedAt) {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].SavedAt.After(infos[j].SavedAt)
	})
	return infos, nil
}

func (r *layoutRepo) read(key string) (*entity.Layout, error) {
	val, err := r.d.Read(key)
	if err != nil {
		return nil, err
	}
	var layout entity.Layout
	if err := json.Unmarshal(val, &layout); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &layout, nil
}

// toKey encodes the name so any layout name maps to a safe file name.
func toKey(name string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.TrimSpace(name)))
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{layoutDir},
		FileName: key + fileExtension,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.TrimSuffix(pathKey.FileName, fileExtension)
}
