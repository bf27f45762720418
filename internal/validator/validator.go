package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/metinatakli/seat-reservation/internal/seatmap"
)

const (
	ErrRequired  = "is required"
	ErrMinValue  = "must be at least %s"
	ErrMaxValue  = "must be at most %s"
	ErrMinLength = "must be at least %s characters long"
	ErrMaxLength = "must be at most %s characters long"
	ErrMinItems  = "must contain at least %s item(s)"
	ErrDigits    = "must contain only digits"
	ErrSeatID    = "must be a seat id such as A1"
	ErrInvalid   = "is invalid"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("digits", validateDigits)
	validator.RegisterValidation("seat_id", validateSeatID)

	return validator
}

func validateDigits(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}

	return true
}

func validateSeatID(fl validator.FieldLevel) bool {
	_, _, ok := seatmap.ParseSeatID(domain.SeatID(fl.Field().String()))
	return ok
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "min":
		return minMaxMessage(err, ErrMinValue, ErrMinLength)
	case "max":
		return minMaxMessage(err, ErrMaxValue, ErrMaxLength)
	case "gte":
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "lte":
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "digits":
		return ErrDigits
	case "seat_id":
		return ErrSeatID
	default:
		return ErrInvalid
	}
}

// FieldMessages flattens a validation error into lower case field names
// mapped to their first message.
func FieldMessages(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		name := strings.ToLower(fieldErr.Field())
		if _, ok := fields[name]; !ok {
			fields[name] = ValidationMessage(fieldErr)
		}
	}

	return fields
}

func minMaxMessage(err validator.FieldError, valueMsg, lengthMsg string) string {
	switch err.Kind().String() {
	case "string":
		return fmt.Sprintf(lengthMsg, err.Param())
	case "slice", "array", "map":
		if valueMsg == ErrMinValue {
			return fmt.Sprintf(ErrMinItems, err.Param())
		}
	}

	return fmt.Sprintf(valueMsg, err.Param())
}
