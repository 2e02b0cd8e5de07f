package api

import "fmt"

// Error carries a server-reported failure: the HTTP status and the message
// from the response body's {"error": "..."} field when present.
//
// 401 is never surfaced as *Error; it maps to common.ErrUnauthorized after
// the unauthorized hook has run. Everything else is recovered locally by the
// caller; validation failures are retried only by explicit user action.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.Status)
	}
	return fmt.Sprintf("server error: status %d: %s", e.Status, e.Message)
}
