// Package api holds the JSON request and response bodies of the HTTP API.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SeatStatusAvailable = "available"
	SeatStatusBooked    = "booked"
	SeatStatusBlocked   = "blocked"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// SeatErrorResponse is returned for conflicting or unknown seats.
type SeatErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	Seats     []string  `json:"seats"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Store       string `json:"store"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type CreateShowRequest struct {
	MovieId      *int64          `json:"movieId" validate:"omitempty,gte=1"`
	MovieTitle   string          `json:"movieTitle" validate:"required_without=MovieId,max=200"`
	ScreenId     int             `json:"screenId" validate:"gte=1"`
	StartTime    time.Time       `json:"startTime" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	Rows         *int            `json:"rows" validate:"omitempty,gte=1,lte=702"`
	Columns      *int            `json:"columns" validate:"omitempty,gte=1,lte=200"`
	BlockedSeats []string        `json:"blockedSeats" validate:"dive,seat_id"`
}

type Show struct {
	Id           int64           `json:"id"`
	MovieId      int64           `json:"movieId"`
	MovieTitle   string          `json:"movieTitle"`
	ScreenId     int             `json:"screenId"`
	StartTime    time.Time       `json:"startTime"`
	Price        decimal.Decimal `json:"price"`
	Rows         int             `json:"rows"`
	Columns      int             `json:"columns"`
	BlockedSeats []string        `json:"blockedSeats"`
}

type ShowsResponse struct {
	Shows []Show `json:"shows"`
}

type Seat struct {
	Id     string `json:"id"`
	Column int    `json:"column"`
	Status string `json:"status"`
}

type SeatRow struct {
	Label string `json:"label"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ShowId    int64           `json:"showId"`
	Price     decimal.Decimal `json:"price"`
	Bookable  int             `json:"bookable"`
	Available int             `json:"available"`
	Rows      []SeatRow       `json:"rows"`
}

type QuoteRequest struct {
	SeatIds []string `json:"seatIds"`
}

type QuoteResponse struct {
	SeatIds     []string        `json:"seatIds"`
	SeatCount   int             `json:"seatCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CreateBookingRequest struct {
	SeatIds  []string `json:"seatIds"`
	Customer Customer `json:"customer"`
}

type Booking struct {
	Id            uuid.UUID       `json:"id"`
	ShowId        int64           `json:"showId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Seats         []string        `json:"seats"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
}

type BookingSummary struct {
	Booking
	MovieTitle string     `json:"movieTitle"`
	ShowTime   *time.Time `json:"showTime,omitempty"`
}

type ListBookingsParams struct {
	ShowId   *int64 `validate:"omitempty,gte=1"`
	Page     *int   `validate:"omitempty,gte=1,lte=100000"`
	PageSize *int   `validate:"omitempty,gte=1,lte=100"`
}

type BookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Metadata Metadata         `json:"metadata"`
}
