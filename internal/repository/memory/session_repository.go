// Package memory provides process-local repository implementations.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/vocabquiz/internal/repository"
)

type entry struct {
	data      []byte
	updatedAt time.Time
}

// SessionRepository keeps quiz sessions in a map. Sessions do not survive a
// restart.
type SessionRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository returns an empty in-memory session store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{entries: make(map[string]entry), now: time.Now}
}

func (r *SessionRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), e.data...), nil
}

func (r *SessionRepository) Set(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = entry{data: append([]byte(nil), data...), updatedAt: r.now()}
	return nil
}

func (r *SessionRepository) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}

func (r *SessionRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, e := range r.entries {
		if e.updatedAt.Before(cutoff) {
			delete(r.entries, key)
			n++
		}
	}
	return n, nil
}
