package jobs

import (
	"context"
	"fmt"

	"github.com/vytor/vocabquiz/internal/models"
	"github.com/vytor/vocabquiz/internal/worker"
)

// SaveResultJob persists one finished quiz and reports through its Pending.
type SaveResultJob struct {
	Saver     ResultSaver
	UserID    int64
	Completed models.CompletedQuiz
	pending   *Pending
}

func (j *SaveResultJob) Name() string { return "save_result" }

func (j *SaveResultJob) Run(ctx context.Context) error {
	result, err := j.Saver.SaveResult(ctx, j.UserID, j.Completed)
	j.pending.complete(result, err)
	if err != nil {
		return fmt.Errorf("save result for user %d session %s: %w", j.UserID, j.Completed.Session.ID, err)
	}
	return nil
}

// Abandon finishes the Pending with err when the pool drops the job unrun.
func (j *SaveResultJob) Abandon(err error) {
	j.pending.complete(nil, err)
}

// WorkerQueue implements ResultQueue using a worker pool
type WorkerQueue struct {
	pool  *worker.Pool
	saver ResultSaver
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, saver ResultSaver) ResultQueue {
	return &WorkerQueue{pool: pool, saver: saver}
}

func (q *WorkerQueue) EnqueueResult(ctx context.Context, userID int64, completed models.CompletedQuiz) (*Pending, error) {
	pending := newPending()
	err := q.pool.Submit(ctx, &SaveResultJob{
		Saver:     q.saver,
		UserID:    userID,
		Completed: completed,
		pending:   pending,
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}
