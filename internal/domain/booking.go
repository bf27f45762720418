package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Customer struct {
	Name  string `validate:"required,max=100"`
	Phone string `validate:"required,max=50,digits"`
}

type Booking struct {
	ID            uuid.UUID
	ShowID        ShowID
	CustomerName  string
	CustomerPhone string
	Seats         []SeatID
	TotalAmount   decimal.Decimal
	Status        BookingStatus
	CreatedAt     time.Time
	CancelledAt   *time.Time
}

// Clone returns a copy that shares no mutable state with b.
func (b Booking) Clone() Booking {
	b.Seats = slices.Clone(b.Seats)
	if b.CancelledAt != nil {
		cancelledAt := *b.CancelledAt
		b.CancelledAt = &cancelledAt
	}

	return b
}

// BookingDraft is everything a store needs to commit a new booking besides
// the show and the requested seats. Layout is the show's screen geometry at
// the time of the request and is what the store validates seats against.
type BookingDraft struct {
	Customer    Customer
	TotalAmount decimal.Decimal
	Layout      ScreenConfig
}

type BookingFilters struct {
	ShowID *ShowID
	Pagination
}

// InventoryStore is the only mutator of seat state and bookings.
//
// Reserve is the single serialization point for a show: it either commits
// every requested seat under one new booking or none of them.
type InventoryStore interface {
	BookedSeats(ctx context.Context, showID ShowID) ([]SeatID, error)
	Reserve(ctx context.Context, showID ShowID, seats []SeatID, draft BookingDraft) (*Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) error
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, filters BookingFilters) ([]Booking, *Metadata, error)
}
