package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/monitoring"
	"github.com/metinatakli/seat-reservation/internal/seatmap"
	"golang.org/x/sync/semaphore"
)

const memoryStoreName = "memory"

// MemoryInventoryStore keeps seat state in process. Reserve and Cancel are
// serialized per show by a context aware semaphore; shows never contend with
// each other.
type MemoryInventoryStore struct {
	showsMu sync.Mutex
	shows   map[domain.ShowID]*showInventory

	bookingsMu sync.RWMutex
	bookings   map[uuid.UUID]*domain.Booking
	created    []uuid.UUID

	now   func() time.Time
	newID func() uuid.UUID
}

type showInventory struct {
	lock *semaphore.Weighted

	// mu guards booked for snapshot readers; writers also hold lock.
	mu     sync.RWMutex
	booked map[domain.SeatID]uuid.UUID
}

func NewMemoryInventoryStore() *MemoryInventoryStore {
	return &MemoryInventoryStore{
		shows:    make(map[domain.ShowID]*showInventory),
		bookings: make(map[uuid.UUID]*domain.Booking),
		now:      time.Now,
		newID:    uuid.New,
	}
}

func (s *MemoryInventoryStore) inventory(showID domain.ShowID) *showInventory {
	s.showsMu.Lock()
	defer s.showsMu.Unlock()

	inv, ok := s.shows[showID]
	if !ok {
		inv = &showInventory{
			lock:   semaphore.NewWeighted(1),
			booked: make(map[domain.SeatID]uuid.UUID),
		}
		s.shows[showID] = inv
	}

	return inv
}

func (s *MemoryInventoryStore) BookedSeats(ctx context.Context, showID domain.ShowID) ([]domain.SeatID, error) {
	inv := s.inventory(showID)

	inv.mu.RLock()
	seats := make([]domain.SeatID, 0, len(inv.booked))
	for seat := range inv.booked {
		seats = append(seats, seat)
	}
	inv.mu.RUnlock()

	slices.Sort(seats)

	return seats, nil
}

func (s *MemoryInventoryStore) Reserve(
	ctx context.Context,
	showID domain.ShowID,
	seats []domain.SeatID,
	draft domain.BookingDraft) (*domain.Booking, error) {

	if len(seats) == 0 {
		return nil, domain.ErrEmptySelection
	}

	layout, err := seatmap.New(draft.Layout)
	if err != nil {
		return nil, fmt.Errorf("seat map of show %d: %w", showID, err)
	}

	requested, unknown := layout.Normalize(seats)
	if len(unknown) > 0 {
		return nil, &domain.InvalidSeatError{Seats: unknown}
	}

	inv := s.inventory(showID)

	if err := s.acquire(ctx, inv, showID); err != nil {
		return nil, err
	}
	defer inv.lock.Release(1)
	defer monitoring.ObserveCommit(memoryStoreName, time.Now())

	var conflicts []domain.SeatID
	for _, seat := range requested {
		if _, taken := inv.booked[seat]; taken {
			conflicts = append(conflicts, seat)
		}
	}

	if len(conflicts) > 0 {
		return nil, &domain.SeatConflictError{Seats: conflicts}
	}

	booking := &domain.Booking{
		ID:            s.newID(),
		ShowID:        showID,
		CustomerName:  draft.Customer.Name,
		CustomerPhone: draft.Customer.Phone,
		Seats:         requested,
		TotalAmount:   draft.TotalAmount,
		Status:        domain.BookingStatusConfirmed,
		CreatedAt:     s.now().UTC(),
	}

	inv.mu.Lock()
	s.bookingsMu.Lock()
	for _, seat := range requested {
		inv.booked[seat] = booking.ID
	}
	s.bookings[booking.ID] = booking
	s.created = append(s.created, booking.ID)
	s.bookingsMu.Unlock()
	inv.mu.Unlock()

	result := booking.Clone()

	return &result, nil
}

func (s *MemoryInventoryStore) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	s.bookingsMu.RLock()
	booking, ok := s.bookings[bookingID]
	var showID domain.ShowID
	if ok {
		showID = booking.ShowID
	}
	s.bookingsMu.RUnlock()

	if !ok {
		return domain.ErrRecordNotFound
	}

	inv := s.inventory(showID)

	if err := s.acquire(ctx, inv, showID); err != nil {
		return err
	}
	defer inv.lock.Release(1)

	inv.mu.Lock()
	defer inv.mu.Unlock()
	s.bookingsMu.Lock()
	defer s.bookingsMu.Unlock()

	if booking.Status != domain.BookingStatusConfirmed {
		return domain.ErrRecordNotFound
	}

	for _, seat := range booking.Seats {
		if inv.booked[seat] == booking.ID {
			delete(inv.booked, seat)
		}
	}

	cancelledAt := s.now().UTC()
	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = &cancelledAt

	return nil
}

func (s *MemoryInventoryStore) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	s.bookingsMu.RLock()
	defer s.bookingsMu.RUnlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	result := booking.Clone()

	return &result, nil
}

func (s *MemoryInventoryStore) ListBookings(
	ctx context.Context,
	filters domain.BookingFilters) ([]domain.Booking, *domain.Metadata, error) {

	s.bookingsMu.RLock()
	matched := make([]domain.Booking, 0)
	for i := len(s.created) - 1; i >= 0; i-- {
		booking := s.bookings[s.created[i]]
		if filters.ShowID != nil && booking.ShowID != *filters.ShowID {
			continue
		}

		matched = append(matched, booking.Clone())
	}
	s.bookingsMu.RUnlock()

	start, end := filters.Window(len(matched))
	metadata := filters.Metadata(len(matched))

	return matched[start:end], metadata, nil
}

func (s *MemoryInventoryStore) acquire(ctx context.Context, inv *showInventory, showID domain.ShowID) error {
	started := time.Now()

	err := inv.lock.Acquire(ctx, 1)
	monitoring.ObserveLockWait(memoryStoreName, time.Since(started), err == nil)
	if err != nil {
		return domain.StoreUnavailable(fmt.Errorf("lock for show %d: %w", showID, err))
	}

	return nil
}
