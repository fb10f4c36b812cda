package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/vocabquiz/internal/db"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/repository"
)

type sessionRepository struct {
	db *db.DB
}

// NewSessionRepository creates a SessionRepository backed by the quiz_sessions table.
func NewSessionRepository(database *db.DB) repository.SessionRepository {
	return &sessionRepository{db: database}
}

func (r *sessionRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := r.db.Builder().Select("data").From("quiz_sessions").
		Where(squirrel.Eq{"session_key": key}).ToSql()
	if err != nil {
		return nil, err
	}
	var data string
	if err := r.db.GetContext(ctx, &data, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.FromContext(ctx).WithPrefix("session_repo").Error("failed to get session %s: %v", key, err)
		return nil, err
	}
	return []byte(data), nil
}

func (r *sessionRepository) Set(ctx context.Context, key string, data []byte) error {
	query, args, err := r.db.Builder().Insert("quiz_sessions").
		Columns("session_key", "data", "updated_at").
		Values(key, string(data), time.Now().UTC()).
		Suffix("ON CONFLICT (session_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).WithPrefix("session_repo").Error("failed to save session %s: %v", key, err)
		return err
	}
	return nil
}

func (r *sessionRepository) Remove(ctx context.Context, key string) error {
	query, args, err := r.db.Builder().Delete("quiz_sessions").Where(squirrel.Eq{"session_key": key}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *sessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := r.db.Builder().Delete("quiz_sessions").
		Where(squirrel.Lt{"updated_at": cutoff.UTC()}).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("session_repo").Error("failed to delete stale sessions: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}
