// Package snapshot autosaves the live pane tree with a debounce.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/panetree/internal/application/port"
	"github.com/bnema/panetree/internal/domain/entity"
	"github.com/bnema/panetree/internal/logging"
)

// DefaultInterval is the debounce delay used when none is configured.
const DefaultInterval = 5 * time.Second

// Service handles debounced layout snapshots. Saves are scheduled on the
// given scheduler, so with a main loop the tree is read on the loop thread.
type Service struct {
	saver     port.LayoutSaver
	provider  port.LayoutProvider
	scheduler entity.Scheduler
	interval  time.Duration

	mu    sync.Mutex
	task  entity.Task
	dirty bool
	ctx   context.Context
	saves int
}

// NewService creates a new snapshot service.
func NewService(
	saver port.LayoutSaver,
	provider port.LayoutProvider,
	scheduler entity.Scheduler,
	interval time.Duration,
) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		saver:     saver,
		provider:  provider,
		scheduler: scheduler,
		interval:  interval,
	}
}

// Start enables autosaves; ctx carries the logger used by scheduled saves.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	logging.FromContext(ctx).Debug().Dur("interval", s.interval).Msg("autosave started")
}

// MarkDirty signals that the tree changed and (re)arms the debounce task.
func (s *Service) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	if s.task != nil {
		s.task.Cancel()
	}
	s.task = s.scheduler.AfterFunc(s.interval, s.flush)
}

func (s *Service) flush() {
	s.mu.Lock()
	s.task = nil
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil {
		return
	}
	if err := s.save(ctx); err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("failed to autosave layout")
	}
}

// SaveNow cancels a pending debounce and saves immediately if dirty.
func (s *Service) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	if s.task != nil {
		s.task.Cancel()
		s.task = nil
	}
	s.mu.Unlock()

	return s.save(ctx)
}

// Stop disables autosaves and writes the final state.
func (s *Service) Stop(ctx context.Context) error {
	err := s.SaveNow(ctx)

	s.mu.Lock()
	s.ctx = nil
	s.mu.Unlock()
	return err
}

// Saves returns how many layouts were written.
func (s *Service) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Service) save(ctx context.Context) error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.dirty = false
	s.mu.Unlock()

	layout := s.provider.LayoutSnapshot()
	if layout == nil {
		return errors.New("layout provider returned nothing")
	}

	if err := s.saver.SaveLayout(ctx, layout); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return fmt.Errorf("autosave layout %q: %w", layout.Name, err)
	}

	s.mu.Lock()
	s.saves++
	s.mu.Unlock()

	logging.FromContext(ctx).Debug().
		Str("layout", layout.Name).
		Int("pane_count", layout.CountPanes()).
		Msg("layout autosaved")
	return nil
}
