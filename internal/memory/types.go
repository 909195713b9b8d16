package memory

import (
	"context"

	"github.com/workmate-ai/intake/internal/clarify"
)

// Message is one entry of a session's turn history.
type Message struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message text
}

// Store is the session state contract: the pending request and turn history
// per (tenant, session) pair, TTL-bounded, TTL refreshed on every write.
// This allows swapping between Redis, in-memory, etc.
type Store interface {
	// GetPending loads the pending request, or nil if none exists.
	GetPending(ctx context.Context, tenantID, sessionID string) (*clarify.PendingRequest, error)

	// SetPending stores the pending request and refreshes the TTL.
	SetPending(ctx context.Context, tenantID, sessionID string, pending *clarify.PendingRequest) error

	// ClearPending removes the pending request.
	ClearPending(ctx context.Context, tenantID, sessionID string) error

	// AppendMessage appends one history entry and refreshes the TTL.
	AppendMessage(ctx context.Context, tenantID, sessionID, role, content string) error

	// History returns the full turn history in order.
	History(ctx context.Context, tenantID, sessionID string) ([]Message, error)
}
