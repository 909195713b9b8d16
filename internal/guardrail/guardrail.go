// Package guardrail is the terminal policy gate of the pipeline. It runs
// after the domain dispatcher and can veto its output unconditionally.
package guardrail

import (
	"github.com/workmate-ai/intake/internal/models"
	"github.com/workmate-ai/intake/internal/state"
)

// RefusalMessage replaces the response when salary data is denied.
const RefusalMessage = "I cannot share salary details. Please contact HR."

const (
	roleHRApprover  = "hr_approver"
	roleSystemAdmin = "system_admin"
)

type Guardrail struct{}

func New() *Guardrail {
	return &Guardrail{}
}

// Enforce overwrites the response and clears all proposed actions when the
// turn is salary-sensitive and the caller holds neither approver role. The
// upstream output is discarded, not merged.
func (g *Guardrail) Enforce(turn *state.TurnContext) {
	turn.AddEvent(models.EventAgentStarted, map[string]any{"agent": "GuardrailAgent"})

	if turn.Sensitivity == "salary" && !turn.User.HasRole(roleHRApprover) && !turn.User.HasRole(roleSystemAdmin) {
		turn.Response = RefusalMessage
		turn.Actions = []models.Action{}
		turn.AddEvent(models.EventGuardrailBlocked, map[string]any{"reason": "salary_access"})
	}

	turn.AddEvent(models.EventAgentFinished, map[string]any{"agent": "GuardrailAgent"})
}
