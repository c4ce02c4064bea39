package conversation

import "errors"

var (
	// ErrEmptyMessage is returned when a turn arrives with no message text.
	ErrEmptyMessage = errors.New("conversation: message is required")

	// ErrEmptyCompletion is returned when the provider responds with no text.
	ErrEmptyCompletion = errors.New("conversation: provider returned empty completion")
)
