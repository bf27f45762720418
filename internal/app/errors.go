package app

import (
	"errors"
	"net/http"
	"slices"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/seat-reservation/api"
	"github.com/metinatakli/seat-reservation/internal/domain"
	appvalidator "github.com/metinatakli/seat-reservation/internal/validator"
)

const (
	ErrInternalServer   = "The server encountered a problem and could not process your request"
	ErrNotFound         = "The requested resource not found"
	ErrMethodNotAllowed = "The method is not supported for this resource"
	ErrFailedValidation = "One or more fields are invalid"
	ErrInvalidCustomer  = "Customer name and phone number are required"
	ErrEmptySelection   = "At least one seat must be selected"
	ErrInvalidSeats     = "Some of the selected seats do not exist for this show"
	ErrSeatConflict     = "Some of the selected seats have already been booked"
	ErrStoreUnavailable = "Seat reservations are temporarily unavailable, please try again"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	app.send(w, r, status, resp)
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) storeUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	w.Header().Set("Retry-After", "1")
	app.errorResponse(w, r, http.StatusServiceUnavailable, ErrStoreUnavailable)
}

// failedValidationResponse reports request validation failures. Errors that
// are not validator.ValidationErrors are treated as server errors.
func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.serverErrorResponse(w, r, err)
		return
	}

	issues := make([]api.ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		issues[i] = api.ValidationError{
			Field: lowerFirst(fieldErr.Field()),
			Issue: appvalidator.ValidationMessage(fieldErr),
		}
	}

	app.validationResponse(w, r, ErrFailedValidation, issues)
}

func (app *Application) validationResponse(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	issues []api.ValidationError) {

	resp := api.ValidationErrorResponse{
		Message:          message,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: issues,
	}

	app.send(w, r, http.StatusUnprocessableEntity, resp)
}

func (app *Application) seatErrorResponse(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	seats []domain.SeatID) {

	resp := api.SeatErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
		Seats:     fromSeatIDs(seats),
	}

	app.send(w, r, status, resp)
}

// reservationErrorResponse maps errors returned by the reservation engine to
// HTTP responses.
func (app *Application) reservationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		conflict    *domain.SeatConflictError
		invalidSeat *domain.InvalidSeatError
		customerErr *domain.CustomerError
	)

	switch {
	case errors.As(err, &conflict):
		app.seatErrorResponse(w, r, http.StatusConflict, ErrSeatConflict, conflict.Seats)

	case errors.As(err, &invalidSeat):
		app.seatErrorResponse(w, r, http.StatusUnprocessableEntity, ErrInvalidSeats, invalidSeat.Seats)

	case errors.As(err, &customerErr):
		app.validationResponse(w, r, ErrInvalidCustomer, customerIssues(customerErr))

	case errors.Is(err, domain.ErrEmptySelection):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, ErrEmptySelection)

	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)

	case errors.Is(err, domain.ErrStoreUnavailable):
		app.storeUnavailableResponse(w, r, err)

	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) send(w http.ResponseWriter, r *http.Request, status int, resp any) {
	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func customerIssues(err *domain.CustomerError) []api.ValidationError {
	fields := make([]string, 0, len(err.Fields))
	for field := range err.Fields {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	issues := make([]api.ValidationError, len(fields))
	for i, field := range fields {
		issues[i] = api.ValidationError{
			Field: "customer." + field,
			Issue: err.Fields[field],
		}
	}

	return issues
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])

	return string(runes)
}
