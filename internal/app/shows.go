package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/seat-reservation/api"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/reservation"
	"github.com/metinatakli/seat-reservation/internal/seatmap"
)

func (app *Application) CreateShowHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CreateShowRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	if input.Price.IsNegative() {
		app.validationResponse(w, r, ErrFailedValidation, []api.ValidationError{
			{Field: "price", Issue: "must be at least 0"},
		})
		return
	}

	show := toDomainShow(input)

	_, err = seatmap.New(show.Screen)
	if err != nil {
		var cfgErr *seatmap.ConfigError
		if errors.As(err, &cfgErr) {
			app.validationResponse(w, r, ErrFailedValidation, []api.ValidationError{
				{Field: "screen", Issue: cfgErr.Reason},
			})
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.showRepo.CreateShow(r.Context(), &show)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/shows/%d", show.ID))

	err = app.writeJSON(w, http.StatusCreated, toApiShow(show), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ListShowsHandler(w http.ResponseWriter, r *http.Request) {
	movieID, err := readInt64(r.URL.Query(), "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	shows, err := app.showRepo.ListShows(r.Context(), domain.ShowFilters{MovieID: movieID})
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	resp := api.ShowsResponse{
		Shows: make([]api.Show, len(shows)),
	}

	for i, show := range shows {
		resp.Shows[i] = toApiShow(show)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShowHandler(w http.ResponseWriter, r *http.Request) {
	showID, err := readShowID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	show, err := app.showRepo.GetShow(r.Context(), showID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiShow(*show), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetSeatMapHandler renders every seat of the show with its current status.
// Clients re-fetch it after a conflict to redraw the grid.
func (app *Application) GetSeatMapHandler(w http.ResponseWriter, r *http.Request) {
	showID, err := readShowID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	availability, err := app.engine.Availability(r.Context(), showID)
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSeatMapResponse(availability), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	showID, err := readShowID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.QuoteRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	quotation, err := app.engine.QuoteSeats(r.Context(), showID, toSeatIDs(input.SeatIds))
	if err != nil {
		app.reservationErrorResponse(w, r, err)
		return
	}

	resp := api.QuoteResponse{
		SeatIds:     fromSeatIDs(quotation.Seats),
		SeatCount:   len(quotation.Seats),
		TotalAmount: quotation.Total,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toDomainShow(input api.CreateShowRequest) domain.Show {
	show := domain.Show{
		MovieTitle: input.MovieTitle,
		ScreenID:   input.ScreenId,
		StartTime:  input.StartTime.UTC(),
		Price:      input.Price,
		Screen: domain.ScreenConfig{
			Rows:    domain.DefaultSeatRows,
			Columns: domain.DefaultSeatColumns,
			Blocked: toSeatIDs(input.BlockedSeats),
		},
	}

	if input.MovieId != nil {
		show.MovieID = *input.MovieId
	}
	if input.Rows != nil {
		show.Screen.Rows = *input.Rows
	}
	if input.Columns != nil {
		show.Screen.Columns = *input.Columns
	}

	return show
}

func toApiShow(show domain.Show) api.Show {
	return api.Show{
		Id:           int64(show.ID),
		MovieId:      show.MovieID,
		MovieTitle:   show.MovieTitle,
		ScreenId:     show.ScreenID,
		StartTime:    show.StartTime,
		Price:        show.Price,
		Rows:         show.Screen.Rows,
		Columns:      show.Screen.Columns,
		BlockedSeats: fromSeatIDs(show.Screen.Blocked),
	}
}

func toSeatMapResponse(availability *reservation.Availability) api.SeatMapResponse {
	resp := api.SeatMapResponse{
		ShowId:    int64(availability.Show.ID),
		Price:     availability.Show.Price,
		Bookable:  availability.Bookable,
		Available: availability.Available,
		Rows:      make([]api.SeatRow, len(availability.Rows)),
	}

	for i, row := range availability.Rows {
		seats := make([]api.Seat, len(row.Seats))

		for j, seat := range row.Seats {
			status := api.SeatStatusAvailable
			switch {
			case seat.Blocked:
				status = api.SeatStatusBlocked
			case seat.Booked:
				status = api.SeatStatusBooked
			}

			seats[j] = api.Seat{Id: string(seat.ID), Column: seat.Column, Status: status}
		}

		resp.Rows[i] = api.SeatRow{Label: row.Label, Seats: seats}
	}

	return resp
}
