package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead lookup misses.
	ErrLeadNotFound = errors.New("leads: lead not found")
	// ErrMissingSessionID is returned when an upsert lacks the session key.
	ErrMissingSessionID = errors.New("leads: session id is required")
)
