package app

import (
	"fmt"
	"net/http"

	"github.com/metinatakli/seat-reservation/api"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/reservation"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

func (app *Application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	showID, err := readShowID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateBookingRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	customer := domain.Customer{
		Name:  input.Customer.Name,
		Phone: input.Customer.Phone,
	}

	booking, err := app.engine.Book(r.Context(), showID, toSeatIDs(input.SeatIds), customer)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/bookings/%s", booking.ID))

	err = app.writeJSON(w, http.StatusCreated, toApiBooking(*booking), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := readBookingID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.engine.GetBooking(r.Context(), bookingID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiBooking(*booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := readBookingID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.engine.Cancel(r.Context(), bookingID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListBookingsHandler serves the booking report, newest bookings first.
func (app *Application) ListBookingsHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	var (
		params api.ListBookingsParams
		err    error
	)

	if params.ShowId, err = readInt64(qs, "showId"); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if params.Page, err = readInt(qs, "page"); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if params.PageSize, err = readInt(qs, "pageSize"); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	entries, metadata, err := app.engine.BookingReport(r.Context(), toBookingFilters(params))
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	resp := api.BookingsResponse{
		Bookings: make([]api.BookingSummary, len(entries)),
		Metadata: toApiMetadata(metadata),
	}

	for i, entry := range entries {
		resp.Bookings[i] = toBookingSummary(entry)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingFilters(params api.ListBookingsParams) domain.BookingFilters {
	filters := domain.BookingFilters{
		Pagination: domain.Pagination{
			Page:     DefaultPage,
			PageSize: DefaultPageSize,
		},
	}

	if params.ShowId != nil {
		showID := domain.ShowID(*params.ShowId)
		filters.ShowID = &showID
	}
	if params.Page != nil {
		filters.Page = *params.Page
	}
	if params.PageSize != nil {
		filters.PageSize = *params.PageSize
	}

	return filters
}

func toApiBooking(booking domain.Booking) api.Booking {
	return api.Booking{
		Id:            booking.ID,
		ShowId:        int64(booking.ShowID),
		CustomerName:  booking.CustomerName,
		CustomerPhone: booking.CustomerPhone,
		Seats:         fromSeatIDs(booking.Seats),
		TotalAmount:   booking.TotalAmount,
		Status:        string(booking.Status),
		CreatedAt:     booking.CreatedAt,
		CancelledAt:   booking.CancelledAt,
	}
}

func toBookingSummary(entry reservation.ReportEntry) api.BookingSummary {
	summary := api.BookingSummary{
		Booking:    toApiBooking(entry.Booking),
		MovieTitle: entry.MovieTitle,
	}

	if !entry.ShowTime.IsZero() {
		showTime := entry.ShowTime
		summary.ShowTime = &showTime
	}

	return summary
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
