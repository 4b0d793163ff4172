package gemini

import (
	"context"
)

// Turn is one prior exchange in a chat conversation.
type Turn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// Client is the interface for the parish assistant chat backend.
type Client interface {
	// Generate produces a reply to message given the prior conversation.
	Generate(ctx context.Context, message string, history []Turn) (string, error)

	// Ping verifies the upstream API is reachable and the key works.
	Ping(ctx context.Context) error
}
