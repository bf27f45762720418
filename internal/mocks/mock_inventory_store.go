package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockInventoryStore struct {
	mock.Mock
	domain.InventoryStore
}

func (m *MockInventoryStore) BookedSeats(ctx context.Context, showID domain.ShowID) ([]domain.SeatID, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatID), args.Error(1)
}

func (m *MockInventoryStore) Reserve(
	ctx context.Context,
	showID domain.ShowID,
	seats []domain.SeatID,
	draft domain.BookingDraft) (*domain.Booking, error) {

	args := m.Called(ctx, showID, seats, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockInventoryStore) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockInventoryStore) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockInventoryStore) ListBookings(
	ctx context.Context,
	filters domain.BookingFilters) ([]domain.Booking, *domain.Metadata, error) {

	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(*domain.Metadata), args.Error(2)
}
