package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidEmailDomain: the address does not carry the institutional suffix.
	ErrInvalidEmailDomain = errors.New("invalid email domain")
	// ErrMissingFields: a required request field was empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidOrExpiredCode covers a wrong code, an expired code, a consumed
	// code and an unknown email alike.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	// ErrPersistence: the verification store call failed.
	ErrPersistence = errors.New("persistence failure")
	// ErrConfiguration: required credentials or endpoints are absent.
	ErrConfiguration = errors.New("configuration error")
	// ErrDelivery is only ever logged.
	ErrDelivery = errors.New("delivery failure")
)
