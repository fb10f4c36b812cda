package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
)

// Store is a durable key-value store holding serialized sessions.
// Get returns (nil, nil) when the key is absent. Writers race; the last Set wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

// Machine drives one user's session and writes every mutation through to the
// store, so a reload resumes at the last persisted state.
type Machine struct {
	store Store
	key   string
	now   func() time.Time
	newID func() string
}

// NewMachine binds a machine to the session stored under key.
func NewMachine(store Store, key string) *Machine {
	return &Machine{
		store: store,
		key:   key,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock overrides the time source.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// Load returns the persisted session, or nil when none exists.
func (m *Machine) Load(ctx context.Context) (*models.QuizSession, error) {
	data, err := m.store.Get(ctx, m.key)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", m.key, err)
	}
	if data == nil {
		return nil, nil
	}

	var s models.QuizSession
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt entry cannot be resumed; treat it as no session.
		logger.FromContext(ctx).Warn("discarding unreadable session %s: %v", m.key, err)
		return nil, nil
	}
	if s.Answers == nil {
		s.Answers = map[int]models.Answer{}
	}
	if s.Options == nil {
		s.Options = map[int][]string{}
	}
	return &s, nil
}

// Initialize starts a new session over items, replacing any existing one.
func (m *Machine) Initialize(ctx context.Context, items []models.VocabItem, difficulty models.Difficulty) (*models.QuizSession, error) {
	if len(items) == 0 {
		return nil, ErrEmptySession
	}
	s := NewSession(m.newID(), items, difficulty, m.now())
	if err := m.save(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordAnswer records an answer on s and persists it.
func (m *Machine) RecordAnswer(ctx context.Context, s *models.QuizSession, index int, selected string, correct bool) error {
	if err := RecordAnswer(s, index, selected, correct); err != nil {
		return err
	}
	return m.save(ctx, s)
}

// Advance moves s forward and persists it. At the boundary nothing is written.
func (m *Machine) Advance(ctx context.Context, s *models.QuizSession) error {
	if !Advance(s) {
		return nil
	}
	return m.save(ctx, s)
}

// SetOptions pins the options for index and persists s.
func (m *Machine) SetOptions(ctx context.Context, s *models.QuizSession, index int, options []string) error {
	if err := SetOptions(s, index, options); err != nil {
		return err
	}
	return m.save(ctx, s)
}

// Reset removes the persisted session.
func (m *Machine) Reset(ctx context.Context) error {
	if err := m.store.Remove(ctx, m.key); err != nil {
		return fmt.Errorf("reset session %s: %w", m.key, err)
	}
	return nil
}

func (m *Machine) save(ctx context.Context, s *models.QuizSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", m.key, err)
	}
	if err := m.store.Set(ctx, m.key, data); err != nil {
		return fmt.Errorf("save session %s: %w", m.key, err)
	}
	return nil
}
