// Package reservation is the entry point for seat booking. It validates a
// request against the show catalog, prices it, and hands the atomic
// check-and-commit to an inventory store.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/events"
	"github.com/metinatakli/seat-reservation/internal/monitoring"
	"github.com/metinatakli/seat-reservation/internal/seatmap"
	appvalidator "github.com/metinatakli/seat-reservation/internal/validator"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName     = "github.com/metinatakli/seat-reservation/internal/reservation"
	publishTimeout = 3 * time.Second
)

type Engine struct {
	catalog   domain.ShowCatalog
	store     domain.InventoryStore
	validator *validator.Validate
	publisher events.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewEngine(
	catalog domain.ShowCatalog,
	store domain.InventoryStore,
	validator *validator.Validate,
	publisher events.Publisher,
	logger *slog.Logger) *Engine {

	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &Engine{
		catalog:   catalog,
		store:     store,
		validator: validator,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

// Quotation is a priced, normalized selection.
type Quotation struct {
	Show  *domain.Show
	Seats []domain.SeatID
	Total decimal.Decimal
}

// Quote returns the price of the distinct seats in selection. An empty
// selection costs zero.
func (e *Engine) Quote(ctx context.Context, showID domain.ShowID, seats []domain.SeatID) (decimal.Decimal, error) {
	quotation, err := e.QuoteSeats(ctx, showID, seats)
	if err != nil {
		return decimal.Zero, err
	}

	return quotation.Total, nil
}

func (e *Engine) QuoteSeats(ctx context.Context, showID domain.ShowID, seats []domain.SeatID) (*Quotation, error) {
	ctx, span := e.tracer.Start(ctx, "reservation.Quote", trace.WithAttributes(
		attribute.Int64("show.id", int64(showID)),
		attribute.Int("seat.requested", len(seats)),
	))
	defer span.End()

	quotation, err := e.quote(ctx, showID, seats)
	endSpan(span, err)

	return quotation, err
}

func (e *Engine) quote(ctx context.Context, showID domain.ShowID, seats []domain.SeatID) (*Quotation, error) {
	show, err := e.lookupShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	layout, err := seatmap.New(show.Screen)
	if err != nil {
		return nil, fmt.Errorf("seat map of show %d: %w", showID, err)
	}

	valid, unknown := layout.Normalize(seats)
	if len(unknown) > 0 {
		return nil, &domain.InvalidSeatError{Seats: unknown}
	}

	return &Quotation{
		Show:  show,
		Seats: valid,
		Total: show.Price.Mul(decimal.NewFromInt(int64(len(valid)))),
	}, nil
}

// lookupShow reads a show from the catalog. Any failure other than a missing
// show is reported as ErrStoreUnavailable.
func (e *Engine) lookupShow(ctx context.Context, showID domain.ShowID) (*domain.Show, error) {
	show, err := e.catalog.GetShow(ctx, showID)
	if err == nil {
		return show, nil
	}

	if !errors.Is(err, domain.ErrRecordNotFound) {
		err = domain.StoreUnavailable(err)
	}

	return nil, fmt.Errorf("show %d: %w", showID, err)
}

// Book commits seats for customer as a single booking. Checks run in a fixed
// order: empty selection, customer details, seat validity, availability.
func (e *Engine) Book(
	ctx context.Context,
	showID domain.ShowID,
	seats []domain.SeatID,
	customer domain.Customer) (*domain.Booking, error) {

	ctx, span := e.tracer.Start(ctx, "reservation.Book", trace.WithAttributes(
		attribute.Int64("show.id", int64(showID)),
		attribute.Int("seat.requested", len(seats)),
	))
	defer span.End()

	booking, show, err := e.book(ctx, showID, seats, customer)
	endSpan(span, err)

	if err != nil {
		monitoring.RecordReservation(outcomeOf(err), 0)
		e.logRejection("booking rejected", err, "show_id", showID, "seats", seats)
		return nil, err
	}

	monitoring.RecordReservation(monitoring.OutcomeSuccess, len(booking.Seats))

	span.SetAttributes(attribute.String("booking.id", booking.ID.String()))

	e.logger.Info("booking confirmed",
		"booking_id", booking.ID,
		"show_id", showID,
		"seats", booking.Seats,
		"total", booking.TotalAmount.StringFixed(2))

	e.publish(ctx, events.BookingConfirmedQueue, booking, show)

	return booking, nil
}

func (e *Engine) book(
	ctx context.Context,
	showID domain.ShowID,
	seats []domain.SeatID,
	customer domain.Customer) (*domain.Booking, *domain.Show, error) {

	if len(seats) == 0 {
		return nil, nil, domain.ErrEmptySelection
	}

	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)

	if err := e.validateCustomer(customer); err != nil {
		return nil, nil, err
	}

	quotation, err := e.quote(ctx, showID, seats)
	if err != nil {
		return nil, nil, err
	}

	draft := domain.BookingDraft{
		Customer:    customer,
		TotalAmount: quotation.Total,
		Layout:      quotation.Show.Screen,
	}

	booking, err := e.store.Reserve(ctx, showID, quotation.Seats, draft)
	if err != nil {
		return nil, nil, err
	}

	return booking, quotation.Show, nil
}

func (e *Engine) validateCustomer(customer domain.Customer) error {
	err := e.validator.Struct(customer)
	if err == nil {
		return nil
	}

	fields := appvalidator.FieldMessages(err)
	if fields == nil {
		return err
	}

	return &domain.CustomerError{Fields: fields}
}

// Cancel releases every seat of a confirmed booking.
func (e *Engine) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	ctx, span := e.tracer.Start(ctx, "reservation.Cancel", trace.WithAttributes(
		attribute.String("booking.id", bookingID.String()),
	))
	defer span.End()

	err := e.store.Cancel(ctx, bookingID)

	monitoring.RecordCancellation(outcomeOf(err))
	endSpan(span, err)

	if err != nil {
		e.logRejection("cancellation rejected", err, "booking_id", bookingID)
		return err
	}

	e.logger.Info("booking cancelled", "booking_id", bookingID)

	booking, err := e.store.GetBooking(ctx, bookingID)
	if err != nil {
		e.logger.Warn("cancelled booking could not be loaded for notification", "booking_id", bookingID, "error", err)
		return nil
	}

	show, err := e.lookupShow(ctx, booking.ShowID)
	if err != nil {
		e.logger.Warn("show of cancelled booking could not be loaded for notification",
			"booking_id", bookingID,
			"show_id", booking.ShowID,
			"error", err)
	}

	e.publish(ctx, events.BookingCancelledQueue, booking, show)

	return nil
}

// SeatStatus is one cell of the availability grid.
type SeatStatus struct {
	ID      domain.SeatID
	Column  int
	Blocked bool
	Booked  bool
}

type AvailabilityRow struct {
	Label string
	Seats []SeatStatus
}

type Availability struct {
	Show      *domain.Show
	Rows      []AvailabilityRow
	Bookable  int
	Available int
}

// Availability renders the show's grid from a fresh snapshot of booked seats.
// The snapshot may be stale by the time it is used; only Book is
// authoritative.
func (e *Engine) Availability(ctx context.Context, showID domain.ShowID) (*Availability, error) {
	ctx, span := e.tracer.Start(ctx, "reservation.Availability", trace.WithAttributes(
		attribute.Int64("show.id", int64(showID)),
	))
	defer span.End()

	availability, err := e.availability(ctx, showID)
	endSpan(span, err)

	return availability, err
}

func (e *Engine) availability(ctx context.Context, showID domain.ShowID) (*Availability, error) {
	show, err := e.lookupShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	layout, err := seatmap.New(show.Screen)
	if err != nil {
		return nil, fmt.Errorf("seat map of show %d: %w", showID, err)
	}

	booked, err := e.store.BookedSeats(ctx, showID)
	if err != nil {
		return nil, err
	}

	taken := make(map[domain.SeatID]bool, len(booked))
	for _, seat := range booked {
		taken[seat] = true
	}

	availability := &Availability{
		Show:     show,
		Bookable: layout.Len(),
	}

	for _, row := range layout.Rows() {
		statuses := make([]SeatStatus, len(row.Seats))

		for i, seat := range row.Seats {
			statuses[i] = SeatStatus{
				ID:      seat.ID,
				Column:  seat.Column,
				Blocked: seat.Blocked,
				Booked:  taken[seat.ID],
			}

			if !seat.Blocked && !taken[seat.ID] {
				availability.Available++
			}
		}

		availability.Rows = append(availability.Rows, AvailabilityRow{Label: row.Label, Seats: statuses})
	}

	return availability, nil
}

func (e *Engine) BookedSeats(ctx context.Context, showID domain.ShowID) ([]domain.SeatID, error) {
	if _, err := e.lookupShow(ctx, showID); err != nil {
		return nil, err
	}

	return e.store.BookedSeats(ctx, showID)
}

func (e *Engine) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	return e.store.GetBooking(ctx, bookingID)
}

// ReportEntry is a booking together with the movie and time of its show.
type ReportEntry struct {
	domain.Booking
	MovieTitle string
	ShowTime   time.Time
}

// BookingReport lists bookings newest first. Shows that have disappeared
// from the catalog leave the movie fields empty.
func (e *Engine) BookingReport(
	ctx context.Context,
	filters domain.BookingFilters) ([]ReportEntry, *domain.Metadata, error) {

	ctx, span := e.tracer.Start(ctx, "reservation.BookingReport")
	defer span.End()

	bookings, metadata, err := e.store.ListBookings(ctx, filters)
	if err != nil {
		endSpan(span, err)
		return nil, nil, err
	}

	shows := make(map[domain.ShowID]*domain.Show)
	entries := make([]ReportEntry, len(bookings))

	for i, booking := range bookings {
		entries[i].Booking = booking

		show, ok := shows[booking.ShowID]
		if !ok {
			show, err = e.lookupShow(ctx, booking.ShowID)
			if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
				endSpan(span, err)
				return nil, nil, err
			}

			shows[booking.ShowID] = show
		}

		if show != nil {
			entries[i].MovieTitle = show.MovieTitle
			entries[i].ShowTime = show.StartTime
		}
	}

	return entries, metadata, nil
}

func (e *Engine) publish(ctx context.Context, queue string, booking *domain.Booking, show *domain.Show) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.NewBookingEvent(booking, show, e.now())

	var err error
	switch queue {
	case events.BookingConfirmedQueue:
		err = e.publisher.PublishBookingConfirmed(ctx, event)
	case events.BookingCancelledQueue:
		err = e.publisher.PublishBookingCancelled(ctx, event)
	}

	if err != nil {
		e.logger.Error("failed to publish booking event", "queue", queue, "booking_id", booking.ID, "error", err)
	}
}

func (e *Engine) logRejection(msg string, err error, args ...any) {
	args = append(args, "error", err)

	if outcomeOf(err) == monitoring.OutcomeUnavailable {
		e.logger.Error(msg, args...)
		return
	}

	e.logger.Warn(msg, args...)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return monitoring.OutcomeSuccess
	case errors.Is(err, domain.ErrSeatConflict):
		return monitoring.OutcomeConflict
	case errors.Is(err, domain.ErrEmptySelection),
		errors.Is(err, domain.ErrInvalidCustomer),
		errors.Is(err, domain.ErrInvalidSeat):
		return monitoring.OutcomeInvalid
	case errors.Is(err, domain.ErrRecordNotFound):
		return monitoring.OutcomeNotFound
	default:
		return monitoring.OutcomeUnavailable
	}
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
