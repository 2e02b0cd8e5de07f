// Package common defines shared constants and sentinel errors used across
// the shopkeeper client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Remote API errors.
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Local flow-control errors.
	ErrValidation = errors.New("validation error")
	ErrInternal   = errors.New("internal error")

	// Session errors.
	ErrNotAuthenticated = errors.New("not authenticated")
)
