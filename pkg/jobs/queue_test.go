package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	_, err := q.Enqueue(Job{ID: "1"})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestQueueProcessesJobs(t *testing.T) {
	var wg sync.WaitGroup
	var seen int32
	q := NewQueue("test", func(_ context.Context, job Job) error {
		atomic.AddInt32(&seen, 1)
		wg.Done()
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	wg.Add(3)
	for _, id := range []string{"a", "b", "c"} {
		queued, err := q.Enqueue(Job{ID: id, Type: "noop"})
		require.NoError(t, err)
		assert.True(t, queued)
	}
	wg.Wait()
	assert.Equal(t, int32(3), atomic.LoadInt32(&seen))
}

func TestQueueCoalescesPendingKeys(t *testing.T) {
	block := make(chan struct{})
	done := make(chan struct{}, 4)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		<-block
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	// The first job is taken by the worker and blocks it.
	_, err := q.Enqueue(Job{ID: "first", Key: "view:*"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)

	queued, err := q.Enqueue(Job{ID: "second", Key: "view:*"})
	require.NoError(t, err)
	assert.True(t, queued)

	queued, err = q.Enqueue(Job{ID: "third", Key: "view:*"})
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Equal(t, 1, q.Pending())

	close(block)
	<-done
	<-done
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	finished := make(chan struct{})
	q := NewQueue("test", func(_ context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("redis down")
		}
		close(finished)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{ID: "retry", Key: "view:*"})
	require.NoError(t, err)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}
