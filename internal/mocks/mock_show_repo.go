package mocks

import (
	"context"

	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShowRepo struct {
	mock.Mock
	domain.ShowRepository
}

func (m *MockShowRepo) GetShow(ctx context.Context, id domain.ShowID) (*domain.Show, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Show), args.Error(1)
}

func (m *MockShowRepo) CreateShow(ctx context.Context, show *domain.Show) error {
	args := m.Called(ctx, show)
	return args.Error(0)
}

func (m *MockShowRepo) ListShows(ctx context.Context, filters domain.ShowFilters) ([]domain.Show, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Show), args.Error(1)
}
