package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/weekcal-api/pkg/jobs"
)

// JobTypeInvalidateViews is the job type handled by ViewInvalidator.
const JobTypeInvalidateViews = "invalidate_views"

type jobQueue interface {
	Enqueue(job jobs.Job) (bool, error)
}

// ViewInvalidator drops cached week and month views after writes and at the
// daily rollover. Work is pushed through a job queue when one is attached.
type ViewInvalidator struct {
	cache  *CacheService
	queue  jobQueue
	logger *zap.Logger
}

// NewViewInvalidator builds an invalidator. The queue is attached later with
// AttachQueue because the queue needs Handle as its handler.
func NewViewInvalidator(cache *CacheService, logger *zap.Logger) *ViewInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewInvalidator{cache: cache, logger: logger}
}

// AttachQueue routes future invalidations through q.
func (v *ViewInvalidator) AttachQueue(q jobQueue) {
	v.queue = q
}

// Schedule requests an invalidation. Without a queue, or when enqueueing
// fails, the cache is invalidated inline.
func (v *ViewInvalidator) Schedule(ctx context.Context, reason string) {
	if v == nil || !v.cache.Enabled() {
		return
	}
	if v.queue != nil {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeInvalidateViews,
			Key:     ViewCachePattern,
			Payload: reason,
		}
		_, err := v.queue.Enqueue(job)
		if err == nil {
			return
		}
		v.logger.Warn("enqueue view invalidation failed, running inline", zap.String("reason", reason), zap.Error(err))
	}
	if err := v.cache.Invalidate(ctx, ViewCachePattern); err != nil {
		v.logger.Error("view invalidation failed", zap.String("reason", reason), zap.Error(err))
	}
}

// Handle is the jobs.Handler for invalidation jobs.
func (v *ViewInvalidator) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeInvalidateViews {
		return fmt.Errorf("unexpected job type %q", job.Type)
	}
	return v.cache.Invalidate(ctx, ViewCachePattern)
}
