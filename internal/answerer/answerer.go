package answerer

import (
	"context"
	"errors"
)

var (
	// ErrUpstream indicates the answering service rejected the request or
	// could not be reached.
	ErrUpstream = errors.New("answering service failure")
	// ErrEmptyAnswer indicates the answering service responded without any
	// usable answer text.
	ErrEmptyAnswer = errors.New("answering service returned no answer")
)

// Answerer sends an assembled prompt to an answering service and returns the
// generated answer text.
type Answerer interface {
	Ask(ctx context.Context, prompt string) (string, error)
}
