package mocks

import (
	"context"

	"github.com/metinatakli/seat-reservation/internal/events"
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingConfirmed(ctx context.Context, event events.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishBookingCancelled(ctx context.Context, event events.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
