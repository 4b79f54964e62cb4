package errors

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")

	ErrProviderNotFound = errors.New("provider not found")

	ErrRequestNotFound = errors.New("resident request not found")

	ErrInvalidID = errors.New("invalid ID format")
)
