package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ShowID int64

type SeatID string

const (
	DefaultSeatRows    = 6
	DefaultSeatColumns = 10
)

// ScreenConfig is the seating geometry of the screen a show runs on.
// Blocked seats exist physically but can never be booked.
type ScreenConfig struct {
	Rows    int
	Columns int
	Blocked []SeatID
}

type Show struct {
	ID         ShowID
	MovieID    int64
	MovieTitle string
	ScreenID   int
	StartTime  time.Time
	Price      decimal.Decimal
	Screen     ScreenConfig
}

type ShowFilters struct {
	MovieID *int64
}

// ShowCatalog is the read side the reservation engine depends on.
type ShowCatalog interface {
	GetShow(ctx context.Context, id ShowID) (*Show, error)
}

type ShowRepository interface {
	ShowCatalog
	CreateShow(ctx context.Context, show *Show) error
	ListShows(ctx context.Context, filters ShowFilters) ([]Show, error)
}
