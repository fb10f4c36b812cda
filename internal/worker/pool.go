package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vytor/vocabquiz/internal/logger"
)

// ErrPoolStopped is returned by Submit once Stop has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

type Job interface {
	Run(context.Context) error
	Name() string
}

// Abandoner is implemented by jobs that need to hear about it when they are
// dropped from the queue without running.
type Abandoner interface {
	Abandon(err error)
}

// Pool runs jobs on a fixed number of workers fed by a bounded queue.
//
// Stop is graceful: queued jobs still run before the workers exit. Cancelling
// the context given to Start is a hard stop: queued jobs never run and the
// ones implementing Abandoner are handed the context error instead.
type Pool struct {
	jobs     chan Job
	quit     chan struct{}
	draining chan struct{}
	stopOnce sync.Once
	// Submit holds the read lock while sending so Stop can wait out in-flight
	// submissions before workers drain the queue.
	mu      sync.RWMutex
	wg      sync.WaitGroup
	workers int
	queue   int
	ctxMu   sync.Mutex
	runCtx  context.Context
	cancel  context.CancelFunc
	log     *logger.Logger
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:     make(chan Job, queueSize),
		quit:     make(chan struct{}),
		draining: make(chan struct{}),
		workers:  workers,
		queue:    queueSize,
		log:      log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.ctxMu.Lock()
	p.runCtx = ctx
	p.cancel = cancel
	p.ctxMu.Unlock()
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				if ctx.Err() != nil {
					p.abandonQueued(workerLog, ctx.Err())
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				}
				select {
				case <-ctx.Done():
					p.abandonQueued(workerLog, ctx.Err())
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case <-p.draining:
					p.drain(ctx, workerLog)
					if err := ctx.Err(); err != nil {
						p.abandonQueued(workerLog, err)
					}
					workerLog.Debug("worker shutting down (pool stopped)")
					return
				case job := <-p.jobs:
					p.run(ctx, workerLog, job)
				}
			}
		}(i + 1)
	}
}

func (p *Pool) drain(ctx context.Context, log *logger.Logger) {
	for ctx.Err() == nil {
		select {
		case job := <-p.jobs:
			p.run(ctx, log, job)
		default:
			return
		}
	}
}

// abandonQueued empties the queue without running anything.
func (p *Pool) abandonQueued(log *logger.Logger, err error) {
	for {
		select {
		case job := <-p.jobs:
			log.Warn("abandoning queued job %s: %v", job.Name(), err)
			if a, ok := job.(Abandoner); ok {
				a.Abandon(err)
			}
		default:
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, workerLog *logger.Logger, job Job) {
	jobLog := workerLog.WithField("job", job.Name())
	jobLog.Debug("starting job")
	start := time.Now()

	// Create a context with the logger for the job
	jobCtx := logger.NewContext(ctx, jobLog)

	if err := job.Run(jobCtx); err != nil {
		jobLog.Error("job failed after %v: %v", time.Since(start), err)
	} else {
		jobLog.Info("job completed in %v", time.Since(start))
	}
}

// Stop refuses new jobs, waits for queued ones to finish and then releases
// the workers. It is safe to call more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.log.Info("stopping worker pool")
		close(p.quit)
		p.mu.Lock()
		close(p.draining)
		p.mu.Unlock()
	})
	p.wg.Wait()
	p.ctxMu.Lock()
	cancel := p.cancel
	p.ctxMu.Unlock()
	if cancel != nil {
		cancel()
	}
	// Anything still queued lost its workers to a cancelled context or was
	// never started.
	p.abandonQueued(p.log, context.Canceled)
	p.log.Info("worker pool stopped")
}

// Submit queues job, blocking while the queue is full. It fails when ctx ends
// first or the pool is stopped or cancelled.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.quit:
		return ErrPoolStopped
	default:
	}
	p.ctxMu.Lock()
	runCtx := p.runCtx
	p.ctxMu.Unlock()
	var cancelled <-chan struct{}
	if runCtx != nil {
		if runCtx.Err() != nil {
			return ErrPoolStopped
		}
		cancelled = runCtx.Done()
	}

	p.log.Debug("submitting job: %s", job.Name())
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		return ErrPoolStopped
	case <-cancelled:
		return ErrPoolStopped
	}
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
