package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrEmptySelection   = errors.New("at least one seat must be selected")
	ErrInvalidSeat      = errors.New("seat(s) do not exist for this show")
	ErrInvalidCustomer  = errors.New("customer name and phone number are required")
	ErrSeatConflict     = errors.New("seat(s) are already reserved")
	ErrStoreUnavailable = errors.New("reservation store is unavailable")
)

// SeatConflictError lists exactly the requested seats that were already
// booked when the reservation was committed.
type SeatConflictError struct {
	Seats []SeatID
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSeatConflict, joinSeats(e.Seats))
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

// InvalidSeatError lists the requested seats that are not part of the
// show's seat map.
type InvalidSeatError struct {
	Seats []SeatID
}

func (e *InvalidSeatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidSeat, joinSeats(e.Seats))
}

func (e *InvalidSeatError) Is(target error) bool {
	return target == ErrInvalidSeat
}

// CustomerError carries field level messages for a rejected customer.
type CustomerError struct {
	Fields map[string]string
}

func (e *CustomerError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidCustomer.Error()
	}

	parts := make([]string, 0, len(e.Fields))
	for _, field := range []string{"name", "phone"} {
		if msg, ok := e.Fields[field]; ok {
			parts = append(parts, field+" "+msg)
		}
	}

	return fmt.Sprintf("%s: %s", ErrInvalidCustomer, strings.Join(parts, ", "))
}

func (e *CustomerError) Is(target error) bool {
	return target == ErrInvalidCustomer
}

// StoreUnavailable wraps an infrastructure failure so callers can match it
// with errors.Is(err, ErrStoreUnavailable) while keeping the cause.
func StoreUnavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func joinSeats(seats []SeatID) string {
	ids := make([]string, len(seats))
	for i, s := range seats {
		ids[i] = string(s)
	}

	return strings.Join(ids, ", ")
}
