// Package scheduler runs periodic retention work.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/vocabquiz/internal/logger"
)

// SessionSweeper deletes quiz sessions untouched since cutoff.
type SessionSweeper interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryPruner trims every user's result history to the retention limit.
type HistoryPruner interface {
	PruneHistory(ctx context.Context) (int64, error)
}

// Scheduler periodically drops stale sessions and prunes result history.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  SessionSweeper
	history   HistoryPruner
	ttl       time.Duration
	interval  time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// New creates a scheduler that sweeps every interval, dropping sessions older than ttl.
func New(sessions SessionSweeper, history HistoryPruner, ttl, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		sessions:  sessions,
		history:   history,
		ttl:       ttl,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.Default().WithPrefix("scheduler"),
	}
}

// Start schedules the sweep and runs it in the background. The first sweep
// runs immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(func() {
		s.Sweep(logger.NewContext(context.Background(), s.log))
	}); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("retention sweep scheduled every %s (session ttl %s)", s.interval, s.ttl)
	return nil
}

// Stop terminates the scheduled sweep.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Sweep runs one retention pass. Failures are logged and do not stop the
// other half of the pass.
func (s *Scheduler) Sweep(ctx context.Context) {
	log := logger.FromContext(ctx)

	cutoff := s.now().Add(-s.ttl)
	if n, err := s.sessions.DeleteOlderThan(ctx, cutoff); err != nil {
		log.Error("failed to sweep stale sessions: %v", err)
	} else if n > 0 {
		log.Info("removed %d stale quiz sessions", n)
	}

	if n, err := s.history.PruneHistory(ctx); err != nil {
		log.Error("failed to prune result history: %v", err)
	} else if n > 0 {
		log.Info("pruned %d old results", n)
	}
}
