// Package pipeline sequences the three stages of a conversation turn:
// Router -> Domain Dispatcher -> Guardrail. The order is fixed; no stage is
// ever skipped and none may branch the sequence.
package pipeline

import (
	"context"

	"github.com/workmate-ai/intake/internal/dispatch"
	"github.com/workmate-ai/intake/internal/guardrail"
	"github.com/workmate-ai/intake/internal/router"
	"github.com/workmate-ai/intake/internal/state"
)

type Pipeline struct {
	router     *router.Router
	dispatcher *dispatch.Dispatcher
	guardrail  *guardrail.Guardrail
}

func New(r *router.Router, d *dispatch.Dispatcher, g *guardrail.Guardrail) *Pipeline {
	return &Pipeline{router: r, dispatcher: d, guardrail: g}
}

// Run executes one turn over the given context. The pipeline owns no
// persistence; the caller supplies the incoming pending request on the turn
// and reads the outgoing one back off it.
func (p *Pipeline) Run(ctx context.Context, turn *state.TurnContext) {
	p.router.Classify(ctx, turn)
	p.dispatcher.Handle(ctx, turn)
	p.guardrail.Enforce(turn)
}
