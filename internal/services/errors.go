// Package services holds the ride matcher, the booking state machine, and
// the notification sinks they publish to.
package services

import "errors"

// Sentinel errors forming the caller-facing taxonomy. Handlers translate
// them with errors.Is into HTTP statuses; nothing here is retried
// internally.
var (
	// ErrInvalidArgument signals malformed or out-of-range input, such as
	// coordinates outside the valid longitude/latitude ranges or an unknown
	// decision value. Maps to 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound signals that a referenced ride or booking is absent.
	// Maps to 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals that the actor lacks authority over the target,
	// such as deciding a booking on someone else's ride. Maps to 403.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidOperation signals a semantically disallowed action, such as
	// a driver booking their own ride. Maps to 400.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrConflict signals a uniqueness violation, such as a second booking
	// for the same (ride, passenger) pair. Maps to 409.
	ErrConflict = errors.New("conflict")
)
