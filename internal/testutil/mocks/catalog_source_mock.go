package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/vocabquiz/internal/models"
)

// MockCatalogSource is a mock implementation of catalog.Source
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) Items(ctx context.Context) ([]models.VocabItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VocabItem), args.Error(1)
}
