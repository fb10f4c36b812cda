package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabquiz/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

type abandonableJob struct {
	funcJob
	abandoned chan error
}

func (j abandonableJob) Abandon(err error) { j.abandoned <- err }

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(3, 10)
	pool.Start(context.Background())

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		err := pool.Submit(context.Background(), funcJob{name: "count", fn: func(context.Context) error {
			count.Add(1)
			return nil
		}})
		require.NoError(t, err)
	}

	pool.Stop()
	assert.Equal(t, int32(20), count.Load())
}

func TestPool_StopDrainsQueue(t *testing.T) {
	pool := worker.NewPool(1, 10)
	release := make(chan struct{})
	var ran atomic.Int32

	require.NoError(t, pool.Submit(context.Background(), funcJob{name: "block", fn: func(context.Context) error {
		<-release
		ran.Add(1)
		return nil
	}}))
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Submit(context.Background(), funcJob{name: "queued", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	assert.Equal(t, 5, pool.QueueSize())

	pool.Start(context.Background())
	close(release)
	pool.Stop()

	assert.Equal(t, int32(5), ran.Load())
	assert.Zero(t, pool.QueueSize())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	err := pool.Submit(context.Background(), funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}

func TestPool_SubmitRespectsContextWhenFull(t *testing.T) {
	pool := worker.NewPool(1, 1)
	noop := funcJob{name: "noop", fn: func(context.Context) error { return nil }}
	require.NoError(t, pool.Submit(context.Background(), noop))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, noop)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_FailingJobDoesNotStopWorker(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())

	var ok atomic.Bool
	require.NoError(t, pool.Submit(context.Background(), funcJob{name: "fail", fn: func(context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, pool.Submit(context.Background(), funcJob{name: "after", fn: func(context.Context) error {
		ok.Store(true)
		return nil
	}}))

	pool.Stop()
	assert.True(t, ok.Load())
}

func TestPool_CancelledContextAbandonsQueue(t *testing.T) {
	pool := worker.NewPool(1, 10)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})

	require.NoError(t, pool.Submit(context.Background(), funcJob{name: "wait", fn: func(jobCtx context.Context) error {
		close(started)
		<-jobCtx.Done()
		return jobCtx.Err()
	}}))
	var ranLater atomic.Bool
	require.NoError(t, pool.Submit(context.Background(), funcJob{name: "later", fn: func(context.Context) error {
		ranLater.Store(true)
		return nil
	}}))

	pool.Start(ctx)
	<-started
	cancel()
	pool.Stop()

	assert.False(t, ranLater.Load())
}

func TestPool_CancelledContextNotifiesAbandonedJobs(t *testing.T) {
	pool := worker.NewPool(1, 10)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})

	require.NoError(t, pool.Submit(context.Background(), funcJob{name: "wait", fn: func(jobCtx context.Context) error {
		close(started)
		<-jobCtx.Done()
		return jobCtx.Err()
	}}))
	queued := abandonableJob{
		funcJob:   funcJob{name: "queued", fn: func(context.Context) error { return nil }},
		abandoned: make(chan error, 1),
	}
	require.NoError(t, pool.Submit(context.Background(), queued))

	pool.Start(ctx)
	<-started
	cancel()

	err := pool.Submit(context.Background(), funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)

	pool.Stop()
	select {
	case err := <-queued.abandoned:
		assert.ErrorIs(t, err, context.Canceled)
	default:
		t.Fatal("queued job was dropped without being told")
	}
	assert.Zero(t, pool.QueueSize())
}

func TestPool_StopWithoutStartAbandonsQueue(t *testing.T) {
	pool := worker.NewPool(1, 2)
	queued := abandonableJob{
		funcJob:   funcJob{name: "queued", fn: func(context.Context) error { return nil }},
		abandoned: make(chan error, 1),
	}
	require.NoError(t, pool.Submit(context.Background(), queued))

	pool.Stop()

	assert.ErrorIs(t, <-queued.abandoned, context.Canceled)
}
