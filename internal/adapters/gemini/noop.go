package gemini

import (
	"context"
	"log/slog"
)

// NoopClient is a no-op chat backend for development and testing. It
// logs requests and returns a canned reply.
type NoopClient struct{}

// NewNoopClient creates a new NoopClient.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

// Generate returns a canned reply without calling any API.
// POST: Returns a fixed string
func (c *NoopClient) Generate(_ context.Context, message string, history []Turn) (string, error) {
	slog.Info("noop_chat_generate", "message_len", len(message), "history_len", len(history))
	return "The parish assistant is offline right now. Please contact the parish office.", nil
}

// Ping always succeeds.
func (c *NoopClient) Ping(_ context.Context) error {
	return nil
}
