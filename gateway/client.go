package gateway

import (
	"context"
)

// Client defines the two remote query operations of the advisory backend.
// Calls are single-shot: implementations never retry.
type Client interface {
	// SubmitTextQuery sends a text question for the given chat
	SubmitTextQuery(ctx context.Context, q TextQuery) (*Result, error)

	// SubmitImageQuery sends an image plus question for the given chat
	SubmitImageQuery(ctx context.Context, q ImageQuery) (*Result, error)
}
