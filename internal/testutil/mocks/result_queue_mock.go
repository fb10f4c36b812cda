package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/vocabquiz/internal/jobs"
	"github.com/vytor/vocabquiz/internal/models"
)

// MockResultQueue is a mock implementation of jobs.ResultQueue
type MockResultQueue struct {
	mock.Mock
}

func (m *MockResultQueue) EnqueueResult(ctx context.Context, userID int64, completed models.CompletedQuiz) (*jobs.Pending, error) {
	args := m.Called(ctx, userID, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Pending), args.Error(1)
}

// MockResultSaver is a mock implementation of jobs.ResultSaver
type MockResultSaver struct {
	mock.Mock
}

func (m *MockResultSaver) SaveResult(ctx context.Context, userID int64, completed models.CompletedQuiz) (*models.TestResult, error) {
	args := m.Called(ctx, userID, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestResult), args.Error(1)
}
