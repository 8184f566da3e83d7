package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekcal-api/pkg/jobs"
)

func TestCacheServiceDisabled(t *testing.T) {
	backend := newMemoryCache()
	svc := NewCacheService(backend, nil, 0, nil, false)

	svc.Set(context.Background(), "view:week:2024-01-15", map[string]int{"a": 1}, 0)
	var dest map[string]int
	assert.False(t, svc.Get(context.Background(), "view:week:2024-01-15", &dest))
	assert.Empty(t, backend.entries)
	assert.NoError(t, svc.Invalidate(context.Background(), ViewCachePattern))
}

func TestCacheServiceRecordsMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCache(), metrics, time.Minute, nil, true)

	var dest map[string]int
	assert.False(t, svc.Get(context.Background(), "k", &dest))
	svc.Set(context.Background(), "k", map[string]int{"a": 1}, 0)
	assert.True(t, svc.Get(context.Background(), "k", &dest))
	assert.Equal(t, 1, dest["a"])
	require.NoError(t, svc.Invalidate(context.Background(), ViewCachePattern))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.Equal(t, uint64(1), snap.CacheInvalidations)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 1e-9)
}

func TestViewCacheKeys(t *testing.T) {
	monday := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "view:week:2024-01-15", weekViewKey(monday))
	assert.Equal(t, "view:month:2024-01:2024-01-15", monthViewKey(monday.AddDate(0, 0, 2), monday))
}

func TestViewInvalidatorInline(t *testing.T) {
	backend := newMemoryCache()
	backend.entries["view:week:2024-01-15"] = []byte("{}")
	inv := NewViewInvalidator(NewCacheService(backend, nil, time.Minute, nil, true), nil)

	inv.Schedule(context.Background(), "test")
	assert.Equal(t, []string{ViewCachePattern}, backend.deleted)
	assert.Empty(t, backend.entries)
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return false, q.err
	}
	q.jobs = append(q.jobs, job)
	return true, nil
}

func TestViewInvalidatorQueued(t *testing.T) {
	backend := newMemoryCache()
	inv := NewViewInvalidator(NewCacheService(backend, nil, time.Minute, nil, true), nil)
	queue := &recordingQueue{}
	inv.AttachQueue(queue)

	inv.Schedule(context.Background(), "event create")
	require.Len(t, queue.jobs, 1)
	job := queue.jobs[0]
	assert.Equal(t, JobTypeInvalidateViews, job.Type)
	assert.Equal(t, ViewCachePattern, job.Key)
	assert.Empty(t, backend.deleted)

	require.NoError(t, inv.Handle(context.Background(), job))
	assert.Equal(t, []string{ViewCachePattern}, backend.deleted)

	assert.Error(t, inv.Handle(context.Background(), jobs.Job{Type: "other"}))
}

func TestViewInvalidatorFallsBackWhenQueueFails(t *testing.T) {
	backend := newMemoryCache()
	inv := NewViewInvalidator(NewCacheService(backend, nil, time.Minute, nil, true), nil)
	inv.AttachQueue(&recordingQueue{err: errors.New("stopped")})

	inv.Schedule(context.Background(), "event delete")
	assert.Equal(t, []string{ViewCachePattern}, backend.deleted)
}

func TestViewInvalidatorWithRealQueue(t *testing.T) {
	backend := newMemoryCache()
	cache := NewCacheService(backend, nil, time.Minute, nil, true)
	inv := NewViewInvalidator(cache, nil)

	done := make(chan struct{}, 1)
	queue := jobs.NewQueue("views", func(ctx context.Context, job jobs.Job) error {
		err := inv.Handle(ctx, job)
		done <- struct{}{}
		return err
	}, jobs.QueueConfig{Workers: 1})
	queue.Start(context.Background())
	defer queue.Stop()
	inv.AttachQueue(queue)

	inv.Schedule(context.Background(), "event update")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("invalidation job did not run")
	}
	assert.Equal(t, []string{ViewCachePattern}, backend.deleted)
}
