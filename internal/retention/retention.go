// Package retention periodically deletes sessions older than a configured
// age.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/wasteday/wasteday/internal/config"
)

// Pruner deletes sessions that started before a cutoff. *database.Store
// implements it.
type Pruner interface {
	DeleteSessionsBefore(before time.Time) (int64, error)
}

type Service struct {
	store    Pruner
	maxAge   time.Duration
	schedule string
	now      func() time.Time
	logger   zerolog.Logger

	mu   sync.Mutex
	cron *rcron.Cron
}

func NewService(store Pruner, cfg config.RetentionConfig, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		maxAge:   cfg.MaxAge,
		schedule: cfg.Schedule,
		now:      time.Now,
		logger:   logger.With().Str("component", "retention").Logger(),
	}
}

// Enabled reports whether a max age is configured.
func (s *Service) Enabled() bool {
	return s.maxAge > 0
}

// Prune deletes sessions that started more than maxAge ago and returns how
// many were removed. It is a no-op when retention is disabled.
func (s *Service) Prune() (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}

	cutoff := s.now().Add(-s.maxAge)
	deleted, err := s.store.DeleteSessionsBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions before %s: %w", cutoff.UTC().Format(time.RFC3339), err)
	}
	return deleted, nil
}

// Start schedules Prune. It returns without scheduling when retention is
// disabled, and stops the scheduler when ctx is done.
func (s *Service) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Debug().Msg("retention disabled")
		return nil
	}

	sched, err := rcron.ParseStandard(s.schedule)
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.schedule, err)
	}

	c := rcron.New()
	c.Schedule(sched, rcron.FuncJob(s.run))

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.logger.Info().Dur("max_age", s.maxAge).Str("schedule", s.schedule).Msg("retention started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Service) run() {
	deleted, err := s.Prune()
	if err != nil {
		s.logger.Error().Err(err).Msg("retention run failed")
		return
	}
	s.logger.Info().Int64("deleted", deleted).Msg("retention run finished")
}

// Stop waits up to five seconds for a running prune to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.logger.Warn().Msg("stop timeout waiting for retention run")
	}
	s.logger.Info().Msg("retention stopped")
}
