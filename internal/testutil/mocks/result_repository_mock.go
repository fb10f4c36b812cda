package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/vocabquiz/internal/models"
)

// MockResultRepository is a mock implementation of repository.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Record(ctx context.Context, result models.TestResult, keep int) (*models.TestResult, *models.UserStatistics, error) {
	args := m.Called(ctx, result, keep)
	var (
		saved *models.TestResult
		st    *models.UserStatistics
	)
	if v := args.Get(0); v != nil {
		saved = v.(*models.TestResult)
	}
	if v := args.Get(1); v != nil {
		st = v.(*models.UserStatistics)
	}
	return saved, st, args.Error(2)
}

func (m *MockResultRepository) List(ctx context.Context, userID int64, limit int) ([]models.TestResult, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TestResult), args.Error(1)
}

func (m *MockResultRepository) GetStats(ctx context.Context, userID int64) (*models.UserStatistics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStatistics), args.Error(1)
}

func (m *MockResultRepository) ResetHistory(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockResultRepository) PruneAll(ctx context.Context, keep int) (int64, error) {
	args := m.Called(ctx, keep)
	return args.Get(0).(int64), args.Error(1)
}
