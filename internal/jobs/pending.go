package jobs

import (
	"context"
	"sync"

	"github.com/vytor/vocabquiz/internal/models"
)

// Pending is the outcome of a queued result save. Waiting is optional; the
// save runs to completion whether or not anyone observes it.
type Pending struct {
	done   chan struct{}
	once   sync.Once
	result *models.TestResult
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done is closed once the save has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the save finishes or ctx ends. A ctx error only means the
// caller stopped waiting; the save itself carries on.
func (p *Pending) Wait(ctx context.Context) (*models.TestResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pending) complete(result *models.TestResult, err error) {
	p.once.Do(func() {
		p.result, p.err = result, err
		close(p.done)
	})
}

// Resolved returns a Pending that has already finished with result and err.
func Resolved(result *models.TestResult, err error) *Pending {
	p := newPending()
	p.complete(result, err)
	return p
}
