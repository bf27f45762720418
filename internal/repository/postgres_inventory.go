package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/monitoring"
	"github.com/metinatakli/seat-reservation/internal/seatmap"
)

const postgresStoreName = "postgres"

// PostgresInventoryStore relies on the partial unique index over
// booking_seats(show_id, seat_id) for live bookings. Concurrent reservations
// of the same seat are linearized by the index itself.
type PostgresInventoryStore struct {
	db *pgxpool.Pool
}

func NewPostgresInventoryStore(db *pgxpool.Pool) *PostgresInventoryStore {
	return &PostgresInventoryStore{
		db: db,
	}
}

const bookingColumns = `
	b.id,
	b.show_id,
	b.customer_name,
	b.customer_phone,
	b.total_amount,
	b.status,
	b.created_at,
	b.cancelled_at,
	ARRAY(
		SELECT bs.seat_id
		FROM booking_seats bs
		WHERE bs.booking_id = b.id
		ORDER BY bs.position
	) AS seats
`

func (p *PostgresInventoryStore) BookedSeats(ctx context.Context, showID domain.ShowID) ([]domain.SeatID, error) {
	query := `
		SELECT seat_id
		FROM booking_seats
		WHERE show_id = $1 AND NOT cancelled
		ORDER BY seat_id COLLATE "C"
	`

	rows, err := p.db.Query(ctx, query, int64(showID))
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}

	seats, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, domain.StoreUnavailable(err)
	}

	return toSeatIDs(seats), nil
}

func (p *PostgresInventoryStore) Reserve(
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
		ID:            uuid.New(),
		ShowID:        showID,
		CustomerName:  draft.Customer.Name,
		CustomerPhone: draft.Customer.Phone,
		Seats:         requested,
		TotalAmount:   draft.TotalAmount,
	}

	started := time.Now()

	err = runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO bookings (id, show_id, customer_name, customer_phone, total_amount)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING status, created_at
		`

		var status string

		err := tx.QueryRow(
			ctx,
			query,
			booking.ID,
			int64(showID),
			booking.CustomerName,
			booking.CustomerPhone,
			booking.TotalAmount,
		).Scan(&status, &booking.CreatedAt)
		if err != nil {
			return err
		}

		booking.Status = domain.BookingStatus(status)

		// Seats are inserted in seat map order so that concurrent bookings
		// always wait on each other's rows in the same order.
		query = `
			INSERT INTO booking_seats (booking_id, show_id, seat_id, position)
			SELECT $1, $2, s.seat_id, s.position
			FROM unnest($3::text[]) WITH ORDINALITY AS s(seat_id, position)
			ON CONFLICT (show_id, seat_id) WHERE NOT cancelled DO NOTHING
			RETURNING seat_id
		`

		rows, err := tx.Query(ctx, query, booking.ID, int64(showID), fromSeatIDs(requested))
		if err != nil {
			return err
		}

		inserted, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		if len(inserted) != len(requested) {
			return &domain.SeatConflictError{Seats: missingSeats(requested, inserted)}
		}

		return nil
	})

	monitoring.ObserveCommit(postgresStoreName, started)

	if err != nil {
		var conflict *domain.SeatConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}

		return nil, mapPostgresError(err, fmt.Sprintf("show %d", showID))
	}

	booking.CreatedAt = booking.CreatedAt.UTC()

	return &booking, nil
}

func (p *PostgresInventoryStore) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET status = 'cancelled', cancelled_at = NOW()
			WHERE id = $1 AND status = 'confirmed'
		`

		tag, err := tx.Exec(ctx, query, bookingID)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrRecordNotFound
		}

		query = `
			UPDATE booking_seats
			SET cancelled = TRUE
			WHERE booking_id = $1
		`

		_, err = tx.Exec(ctx, query, bookingID)

		return err
	})

	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrRecordNotFound
		}

		return domain.StoreUnavailable(err)
	}

	return nil
}

func (p *PostgresInventoryStore) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	booking, err := scanBooking(p.db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, domain.StoreUnavailable(err)
	}

	return booking, nil
}

func (p *PostgresInventoryStore) ListBookings(
	ctx context.Context,
	filters domain.BookingFilters) ([]domain.Booking, *domain.Metadata, error) {

	query := `
		SELECT COUNT(*) OVER(), ` + bookingColumns + `
		FROM bookings b
		WHERE ($1::bigint IS NULL OR b.show_id = $1)
		ORDER BY b.created_at DESC, b.id
		LIMIT $2 OFFSET $3
	`

	var showID *int64
	if filters.ShowID != nil {
		id := int64(*filters.ShowID)
		showID = &id
	}

	rows, err := p.db.Query(ctx, query, showID, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, nil, domain.StoreUnavailable(err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	totalRecords := 0

	for rows.Next() {
		booking, err := scanBooking(rows, &totalRecords)
		if err != nil {
			return nil, nil, domain.StoreUnavailable(err)
		}

		bookings = append(bookings, *booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, domain.StoreUnavailable(err)
	}

	metadata := filters.Metadata(totalRecords)

	return bookings, metadata, nil
}

func scanBooking(row pgx.Row, leading ...any) (*domain.Booking, error) {
	var (
		booking domain.Booking
		showID  int64
		status  string
		seats   []string
	)

	dest := append(leading,
		&booking.ID,
		&showID,
		&booking.CustomerName,
		&booking.CustomerPhone,
		&booking.TotalAmount,
		&status,
		&booking.CreatedAt,
		&booking.CancelledAt,
		&seats,
	)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	booking.ShowID = domain.ShowID(showID)
	booking.Status = domain.BookingStatus(status)
	booking.Seats = toSeatIDs(seats)
	booking.CreatedAt = booking.CreatedAt.UTC()

	if booking.CancelledAt != nil {
		cancelledAt := booking.CancelledAt.UTC()
		booking.CancelledAt = &cancelledAt
	}

	return &booking, nil
}

// mapPostgresError turns constraint violations into domain errors and every
// other failure into ErrStoreUnavailable.
func mapPostgresError(err error, subject string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return fmt.Errorf("%s: %w", subject, domain.ErrRecordNotFound)
	}

	return domain.StoreUnavailable(err)
}

func missingSeats(requested []domain.SeatID, inserted []string) []domain.SeatID {
	got := make(map[domain.SeatID]struct{}, len(inserted))
	for _, seat := range inserted {
		got[domain.SeatID(seat)] = struct{}{}
	}

	missing := make([]domain.SeatID, 0, len(requested)-len(inserted))
	for _, seat := range requested {
		if _, ok := got[seat]; !ok {
			missing = append(missing, seat)
		}
	}

	return missing
}

func toSeatIDs(seats []string) []domain.SeatID {
	ids := make([]domain.SeatID, len(seats))
	for i, s := range seats {
		ids[i] = domain.SeatID(s)
	}

	return ids
}

func fromSeatIDs(seats []domain.SeatID) []string {
	ids := make([]string, len(seats))
	for i, s := range seats {
		ids[i] = string(s)
	}

	return ids
}
