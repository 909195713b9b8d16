// Package state holds the per-turn context threaded through the pipeline.
package state

import (
	"github.com/workmate-ai/intake/internal/clarify"
	"github.com/workmate-ai/intake/internal/models"
)

// TurnContext is the mutable state of one conversation turn. It is created at
// pipeline entry, mutated strictly sequentially by the three stages, and
// never shared across turns.
type TurnContext struct {
	TenantID  string
	SessionID string
	Message   string
	User      models.UserContext

	Domain      string
	Sensitivity string

	Pending  *clarify.PendingRequest
	Response string
	Actions  []models.Action
	Events   []models.Event
}

// AddEvent appends a diagnostic event. Events are observational only; nothing
// reads them back during the turn.
func (t *TurnContext) AddEvent(eventType string, data map[string]any) {
	t.Events = append(t.Events, models.Event{Type: eventType, Data: data})
}
