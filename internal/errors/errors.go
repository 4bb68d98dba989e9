package errors

import (
	"errors"
	"net/http"
)

// Error is a domain error with a stable code. Handlers map the code to an
// HTTP status; everything else is treated as an internal error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match two domain errors by code, so services can wrap
// sentinels with context and handlers still recognize them.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrInvalidRange          = New("invalid_range", "end must be after begin")
	ErrInThePast             = New("in_the_past", "interval begins in the past")
	ErrPastSlot              = New("past_slot", "time slot is in the past or outside the bookable horizon")
	ErrSlotConflict          = New("slot_conflict", "time slot is no longer available")
	ErrProviderNotFound      = New("provider_not_found", "provider not found")
	ErrForbidden             = New("forbidden", "access denied")
	ErrNotFound              = New("not_found", "resource not found")
	ErrInvalidNote           = New("invalid_note", "note must be between 0 and 5")
	ErrAlreadyRated          = New("already_rated", "appointment already rated")
	ErrInvalidIntervention   = New("invalid_intervention", "provider does not offer this appointment type")
	ErrPaymentTimeout        = New("payment_timeout", "payment processor did not answer in time")
	ErrPaymentProcessorError = New("payment_processor_error", "payment processor rejected the request")
)

// HTTPStatus returns the status code an API handler should answer with.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case "invalid_range", "in_the_past", "past_slot", "invalid_note", "invalid_intervention":
		return http.StatusBadRequest
	case "slot_conflict", "already_rated":
		return http.StatusConflict
	case "provider_not_found", "not_found":
		return http.StatusNotFound
	case "forbidden":
		return http.StatusForbidden
	case "payment_timeout":
		return http.StatusGatewayTimeout
	case "payment_processor_error":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
