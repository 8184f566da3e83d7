package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultRolloverSpec fires at local midnight.
const DefaultRolloverSpec = "0 0 * * *"

// Invalidator drops cached views.
type Invalidator interface {
	Schedule(ctx context.Context, reason string)
}

// Scheduler runs the periodic view cache rollover. Week and month views carry
// is_today flags, so they go stale when the day changes.
type Scheduler struct {
	cron        *cron.Cron
	spec        string
	invalidator Invalidator
	logger      *zap.Logger
}

// New creates a scheduler evaluating spec in loc.
func New(spec string, loc *time.Location, invalidator Invalidator, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultRolloverSpec
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		spec:        spec,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Start registers the rollover job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.Rollover); err != nil {
		return fmt.Errorf("add cache rollover %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("rollover", s.spec))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Next reports when the rollover fires next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Rollover invalidates every cached view.
func (s *Scheduler) Rollover() {
	if s.invalidator == nil {
		return
	}
	s.invalidator.Schedule(context.Background(), "day rollover")
}
