package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusChanged is returned by conditional status updates when
	// the booking is no longer in the status the caller read.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
