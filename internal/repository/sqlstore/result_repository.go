package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/vocabquiz/internal/db"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
	"github.com/vytor/vocabquiz/internal/repository"
	"github.com/vytor/vocabquiz/internal/stats"
)

var (
	resultColumns = []string{
		"id", "user_id", "session_id", "score", "total_questions", "difficulty",
		"time_taken_seconds", "answers", "created_at",
	}
	statsColumns = []string{
		"user_id", "total_tests", "total_questions", "correct_answers", "accuracy_percentage",
		"average_score", "best_score", "created_at", "updated_at",
	}
)

// Newest first; id breaks ties between results saved within the same instant.
const historyOrder = "created_at DESC, id DESC"

type resultRepository struct {
	db *db.DB
}

// NewResultRepository creates a new ResultRepository implementation
func NewResultRepository(database *db.DB) repository.ResultRepository {
	return &resultRepository{db: database}
}

func (r *resultRepository) Record(ctx context.Context, result models.TestResult, keep int) (*models.TestResult, *models.UserStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo").WithField("user_id", result.UserID)
	log.Debug("recording result: session=%s score=%d/%d", result.SessionID, result.Score, result.TotalQuestions)

	b := r.db.Builder()
	var updated models.UserStatistics

	err := r.db.Tx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := b.Select("COUNT(*)").From("test_results").
			Where(squirrel.Eq{"session_id": result.SessionID}).ToSql()
		if err != nil {
			return err
		}
		var existing int
		if err := tx.GetContext(ctx, &existing, query, args...); err != nil {
			return err
		}
		if existing > 0 {
			return repository.ErrDuplicate
		}

		query, args, err = b.Insert("test_results").
			Columns("user_id", "session_id", "score", "total_questions", "difficulty", "time_taken_seconds", "answers", "created_at").
			Values(result.UserID, result.SessionID, result.Score, result.TotalQuestions, result.Difficulty,
				result.TimeTakenSeconds, result.Answers, result.CreatedAt).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &result.ID, query, args...); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}

		prev, err := r.lockStats(ctx, tx, result.UserID, result.CreatedAt)
		if err != nil {
			return fmt.Errorf("read statistics: %w", err)
		}

		updated = stats.Fold(*prev, result.Score, result.TotalQuestions, result.CreatedAt)
		if err := r.writeStats(ctx, tx, updated); err != nil {
			return fmt.Errorf("update statistics: %w", err)
		}

		pruned, err := r.prune(ctx, tx, result.UserID, keep)
		if err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
		if pruned > 0 {
			log.Debug("pruned %d old results", pruned)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Debug("result %d recorded, total_tests=%d", result.ID, updated.TotalTests)
	return &result, &updated, nil
}

// lockStats makes sure the statistics row exists and reads it, holding a row
// lock on engines that support one.
func (r *resultRepository) lockStats(ctx context.Context, tx *sqlx.Tx, userID int64, at time.Time) (*models.UserStatistics, error) {
	b := r.db.Builder()

	query, args, err := b.Insert("user_statistics").
		Columns("user_id", "created_at", "updated_at").
		Values(userID, at, at).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	sel := b.Select(statsColumns...).From("user_statistics").Where(squirrel.Eq{"user_id": userID})
	if lock := r.db.Dialect.RowLock; lock != "" {
		sel = sel.Suffix(lock)
	}
	query, args, err = sel.ToSql()
	if err != nil {
		return nil, err
	}
	var st models.UserStatistics
	if err := tx.GetContext(ctx, &st, query, args...); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *resultRepository) writeStats(ctx context.Context, tx *sqlx.Tx, st models.UserStatistics) error {
	query, args, err := r.db.Builder().Update("user_statistics").
		SetMap(map[string]interface{}{
			"total_tests":         st.TotalTests,
			"total_questions":     st.TotalQuestions,
			"correct_answers":     st.CorrectAnswers,
			"accuracy_percentage": st.AccuracyPercentage,
			"average_score":       st.AverageScore,
			"best_score":          st.BestScore,
			"updated_at":          st.UpdatedAt,
		}).
		Where(squirrel.Eq{"user_id": st.UserID}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (r *resultRepository) prune(ctx context.Context, tx *sqlx.Tx, userID int64, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	query, args, err := r.db.Builder().Delete("test_results").
		Where(squirrel.Eq{"user_id": userID}).
		Where("id NOT IN (SELECT id FROM test_results WHERE user_id = ? ORDER BY "+historyOrder+" LIMIT ?)", userID, keep).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *resultRepository) List(ctx context.Context, userID int64, limit int) ([]models.TestResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("listing results: user_id=%d limit=%d", userID, limit)

	sel := r.db.Builder().Select(resultColumns...).From("test_results").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy(historyOrder)
	if limit > 0 {
		sel = sel.Limit(uint64(limit))
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	results := []models.TestResult{}
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		log.Error("failed to list results: %v", err)
		return nil, err
	}
	return results, nil
}

func (r *resultRepository) GetStats(ctx context.Context, userID int64) (*models.UserStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("getting statistics: user_id=%d", userID)

	query, args, err := r.db.Builder().Select(statsColumns...).From("user_statistics").
		Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, err
	}
	var st models.UserStatistics
	if err := r.db.GetContext(ctx, &st, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get statistics: %v", err)
		return nil, err
	}
	return &st, nil
}

func (r *resultRepository) ResetHistory(ctx context.Context, userID int64, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("resetting history: user_id=%d", userID)

	b := r.db.Builder()
	return r.db.Tx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := b.Delete("test_results").Where(squirrel.Eq{"user_id": userID}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to delete results: %v", err)
			return err
		}

		zero := stats.Zero(userID, at)
		if err := r.writeStats(ctx, tx, zero); err != nil {
			log.Error("failed to zero statistics: %v", err)
			return err
		}

		n, _ := res.RowsAffected()
		log.Info("history reset for user %d, %d results removed", userID, n)
		return nil
	})
}

func (r *resultRepository) PruneAll(ctx context.Context, keep int) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	if keep <= 0 {
		return 0, nil
	}

	query, args, err := r.db.Builder().Delete("test_results").
		Where(`id IN (
    SELECT id FROM (
        SELECT id, ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY `+historyOrder+`) AS rn
        FROM test_results
    ) ranked
    WHERE rn > ?
)`, keep).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to prune results: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("pruned %d results beyond the newest %d per user", n, keep)
	return n, nil
}
