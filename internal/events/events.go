// Package events carries booking lifecycle notifications to downstream
// consumers over RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingEvent is self contained so consumers never have to query the
// reservation store.
type BookingEvent struct {
	BookingID     string          `json:"booking_id"`
	ShowID        int64           `json:"show_id"`
	MovieTitle    string          `json:"movie_title,omitempty"`
	StartsAt      *time.Time      `json:"starts_at,omitempty"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Seats         []string        `json:"seats"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingEvent) error
	PublishBookingCancelled(ctx context.Context, event BookingEvent) error
}

// NewBookingEvent builds the payload for booking. show may be nil when the
// catalog entry is no longer available.
func NewBookingEvent(booking *domain.Booking, show *domain.Show, occurredAt time.Time) BookingEvent {
	seats := make([]string, len(booking.Seats))
	for i, seat := range booking.Seats {
		seats[i] = string(seat)
	}

	event := BookingEvent{
		BookingID:     booking.ID.String(),
		ShowID:        int64(booking.ShowID),
		CustomerName:  booking.CustomerName,
		CustomerPhone: booking.CustomerPhone,
		Seats:         seats,
		TotalAmount:   booking.TotalAmount,
		Status:        string(booking.Status),
		OccurredAt:    occurredAt.UTC(),
	}

	if show != nil {
		startsAt := show.StartTime.UTC()
		event.MovieTitle = show.MovieTitle
		event.StartsAt = &startsAt
	}

	return event
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingConfirmed(context.Context, BookingEvent) error { return nil }

func (NoopPublisher) PublishBookingCancelled(context.Context, BookingEvent) error { return nil }
