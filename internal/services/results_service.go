package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/vytor/vocabquiz/internal/errors"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
	"github.com/vytor/vocabquiz/internal/repository"
)

// ResultsService records finished quizzes and serves the history built from them.
type ResultsService interface {
	SaveResult(ctx context.Context, userID int64, completed models.CompletedQuiz) (*models.TestResult, error)
	GetStats(ctx context.Context, userID int64) (*models.UserStatistics, error)
	ListResults(ctx context.Context, userID int64) ([]models.TestResult, error)
	ResetHistory(ctx context.Context, userID int64) error
	// PruneHistory trims every user's history to the retention limit.
	PruneHistory(ctx context.Context) (int64, error)
}

type resultsService struct {
	resultRepo   repository.ResultRepository
	historyLimit int
	now          func() time.Time
}

// NewResultsService creates a new ResultsService keeping historyLimit results per user.
func NewResultsService(resultRepo repository.ResultRepository, historyLimit int) ResultsService {
	return &resultsService{
		resultRepo:   resultRepo,
		historyLimit: historyLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *resultsService) SaveResult(ctx context.Context, userID int64, completed models.CompletedQuiz) (*models.TestResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id":    userID,
		"session_id": completed.Session.ID,
	})
	log.Debug("saving result")

	answers, err := json.Marshal(completed.Session.Answers)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("encode answers: %w", err))
	}

	difficulty := completed.Session.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyAll
	}

	result := models.TestResult{
		UserID:           userID,
		SessionID:        completed.Session.ID,
		Score:            completed.Summary.Score,
		TotalQuestions:   completed.Summary.TotalQuestions,
		Difficulty:       difficulty,
		TimeTakenSeconds: completed.Summary.TimeTakenSeconds,
		Answers:          string(answers),
		CreatedAt:        completed.EndTime.UTC(),
	}

	// Failures are logged once by whoever runs the save.
	saved, st, err := s.resultRepo.Record(ctx, result, s.historyLimit)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.NewConflictError("result for this quiz was already saved")
		}
		return nil, errors.NewInternalError(err)
	}

	log.Info("result saved: %d/%d, total_tests=%d best=%d", saved.Score, saved.TotalQuestions, st.TotalTests, st.BestScore)
	return saved, nil
}

// GetStats returns the user's statistics; a user with no history gets a
// zero-valued record.
func (s *resultsService) GetStats(ctx context.Context, userID int64) (*models.UserStatistics, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting statistics: user_id=%d", userID)

	st, err := s.resultRepo.GetStats(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return &models.UserStatistics{UserID: userID}, nil
		}
		log.Error("failed to get statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return st, nil
}

func (s *resultsService) ListResults(ctx context.Context, userID int64) ([]models.TestResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing results: user_id=%d", userID)

	results, err := s.resultRepo.List(ctx, userID, s.historyLimit)
	if err != nil {
		log.Error("failed to list results: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return results, nil
}

func (s *resultsService) ResetHistory(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("resetting history: user_id=%d", userID)

	if err := s.resultRepo.ResetHistory(ctx, userID, s.now()); err != nil {
		log.Error("failed to reset history: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *resultsService) PruneHistory(ctx context.Context) (int64, error) {
	n, err := s.resultRepo.PruneAll(ctx, s.historyLimit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to prune history: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}
