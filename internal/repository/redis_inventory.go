package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/monitoring"
	"github.com/metinatakli/seat-reservation/internal/seatmap"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	redisStoreName = "redis"

	allBookingsKey = "bookings"

	errBookingChanged = "booking changed"

	maxCancelAttempts = 3
)

var reserveSeatsScript = redis.NewScript(`
    -- KEYS = [show seats hash, booking key, all bookings index, show bookings index]
    -- ARGV = [bookingID, booking json, score, seat ids...]

    local conflicts = {}
    for i=4, #ARGV do
        if redis.call("HEXISTS", KEYS[1], ARGV[i]) == 1 then
            table.insert(conflicts, ARGV[i])
        end
    end

    if #conflicts > 0 then
        return conflicts
    end

    for i=4, #ARGV do
        redis.call("HSET", KEYS[1], ARGV[i], ARGV[1])
    end

    redis.call("SET", KEYS[2], ARGV[2])
    redis.call("ZADD", KEYS[3], ARGV[3], ARGV[1])
    redis.call("ZADD", KEYS[4], ARGV[3], ARGV[1])

    return {}
`)

var cancelBookingScript = redis.NewScript(`
    -- KEYS = [booking key, show seats hash]
    -- ARGV = [expected booking json, cancelled booking json, bookingID, seat ids...]

    if redis.call("GET", KEYS[1]) ~= ARGV[1] then
        return redis.error_reply("booking changed")
    end

    for i=4, #ARGV do
        if redis.call("HGET", KEYS[2], ARGV[i]) == ARGV[3] then
            redis.call("HDEL", KEYS[2], ARGV[i])
        end
    end

    redis.call("SET", KEYS[1], ARGV[2])

    return "OK"
`)

// RedisInventoryStore keeps one hash per show mapping booked seats to their
// booking id. Reserve and Cancel are single Lua script runs, so Redis
// executes each of them atomically.
type RedisInventoryStore struct {
	client redis.UniversalClient
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewRedisInventoryStore(client redis.UniversalClient) *RedisInventoryStore {
	return &RedisInventoryStore{
		client: client,
		now:    time.Now,
		newID:  uuid.New,
	}
}

type bookingRecord struct {
	ID            uuid.UUID       `json:"id"`
	ShowID        int64           `json:"showId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Seats         []string        `json:"seats"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
}

func showSeatsKey(showID domain.ShowID) string {
	return fmt.Sprintf("show:%d:seats", showID)
}

func showBookingsKey(showID domain.ShowID) string {
	return fmt.Sprintf("show:%d:bookings", showID)
}

func bookingKey(bookingID uuid.UUID) string {
	return "booking:" + bookingID.String()
}

func (s *RedisInventoryStore) BookedSeats(ctx context.Context, showID domain.ShowID) ([]domain.SeatID, error) {
	seats, err := s.client.HKeys(ctx, showSeatsKey(showID)).Result()
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}

	slices.Sort(seats)

	return toSeatIDs(seats), nil
}

func (s *RedisInventoryStore) Reserve(
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

	booking := domain.Booking{
		ID:            s.newID(),
		ShowID:        showID,
		CustomerName:  draft.Customer.Name,
		CustomerPhone: draft.Customer.Phone,
		Seats:         requested,
		TotalAmount:   draft.TotalAmount,
		Status:        domain.BookingStatusConfirmed,
		CreatedAt:     s.now().UTC(),
	}

	payload, err := encodeBooking(booking)
	if err != nil {
		return nil, err
	}

	keys := []string{
		showSeatsKey(showID),
		bookingKey(booking.ID),
		allBookingsKey,
		showBookingsKey(showID),
	}

	args := reserveArgs(booking, payload)

	started := time.Now()
	result, err := reserveSeatsScript.Run(ctx, s.client, keys, args...).StringSlice()
	monitoring.ObserveCommit(redisStoreName, started)

	if err != nil {
		return nil, domain.StoreUnavailable(fmt.Errorf("reserve seats of show %d: %w", showID, err))
	}

	if len(result) > 0 {
		return nil, &domain.SeatConflictError{Seats: toSeatIDs(result)}
	}

	return &booking, nil
}

func (s *RedisInventoryStore) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	for range maxCancelAttempts {
		current, err := s.client.Get(ctx, bookingKey(bookingID)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrRecordNotFound
			}

			return domain.StoreUnavailable(err)
		}

		booking, err := decodeBooking(current)
		if err != nil {
			return err
		}

		if booking.Status != domain.BookingStatusConfirmed {
			return domain.ErrRecordNotFound
		}

		cancelledAt := s.now().UTC()
		booking.Status = domain.BookingStatusCancelled
		booking.CancelledAt = &cancelledAt

		payload, err := encodeBooking(*booking)
		if err != nil {
			return err
		}

		keys := []string{bookingKey(bookingID), showSeatsKey(booking.ShowID)}
		args := append([]any{current, payload, bookingID.String()}, seatArgs(booking.Seats)...)

		err = cancelBookingScript.Run(ctx, s.client, keys, args...).Err()
		if err == nil {
			return nil
		}

		if !redis.HasErrorPrefix(err, errBookingChanged) {
			return domain.StoreUnavailable(err)
		}
	}

	return domain.StoreUnavailable(fmt.Errorf("booking %s kept changing during cancellation", bookingID))
}

func (s *RedisInventoryStore) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	payload, err := s.client.Get(ctx, bookingKey(bookingID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, domain.StoreUnavailable(err)
	}

	return decodeBooking(payload)
}

func (s *RedisInventoryStore) ListBookings(
	ctx context.Context,
	filters domain.BookingFilters) ([]domain.Booking, *domain.Metadata, error) {

	index := allBookingsKey
	if filters.ShowID != nil {
		index = showBookingsKey(*filters.ShowID)
	}

	total, err := s.client.ZCard(ctx, index).Result()
	if err != nil {
		return nil, nil, domain.StoreUnavailable(err)
	}

	metadata := filters.Metadata(int(total))
	bookings := []domain.Booking{}

	start, end := filters.Window(int(total))
	if start == end {
		return bookings, metadata, nil
	}

	ids, err := s.client.ZRevRange(ctx, index, int64(start), int64(end-1)).Result()
	if err != nil {
		return nil, nil, domain.StoreUnavailable(err)
	}

	if len(ids) == 0 {
		return bookings, metadata, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "booking:" + id
	}

	payloads, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, domain.StoreUnavailable(err)
	}

	for _, payload := range payloads {
		raw, ok := payload.(string)
		if !ok {
			continue
		}

		booking, err := decodeBooking(raw)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, *booking)
	}

	return bookings, metadata, nil
}

func reserveArgs(booking domain.Booking, payload string) []any {
	score := strconv.FormatInt(booking.CreatedAt.UnixMicro(), 10)

	return append([]any{booking.ID.String(), payload, score}, seatArgs(booking.Seats)...)
}

func seatArgs(seats []domain.SeatID) []any {
	args := make([]any, len(seats))
	for i, seat := range seats {
		args[i] = string(seat)
	}

	return args
}

func encodeBooking(booking domain.Booking) (string, error) {
	record := bookingRecord{
		ID:            booking.ID,
		ShowID:        int64(booking.ShowID),
		CustomerName:  booking.CustomerName,
		CustomerPhone: booking.CustomerPhone,
		Seats:         fromSeatIDs(booking.Seats),
		TotalAmount:   booking.TotalAmount,
		Status:        string(booking.Status),
		CreatedAt:     booking.CreatedAt,
		CancelledAt:   booking.CancelledAt,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode booking %s: %w", booking.ID, err)
	}

	return string(payload), nil
}

func decodeBooking(payload string) (*domain.Booking, error) {
	var record bookingRecord

	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}

	return &domain.Booking{
		ID:            record.ID,
		ShowID:        domain.ShowID(record.ShowID),
		CustomerName:  record.CustomerName,
		CustomerPhone: record.CustomerPhone,
		Seats:         toSeatIDs(record.Seats),
		TotalAmount:   record.TotalAmount,
		Status:        domain.BookingStatus(record.Status),
		CreatedAt:     record.CreatedAt,
		CancelledAt:   record.CancelledAt,
	}, nil
}
