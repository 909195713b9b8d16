// Package dispatch drives the per-domain intake state machine: continue an
// in-flight pending request or classify a new one, ask the next question, and
// submit completed requests downstream.
package dispatch

import (
	"context"
	"net/http"

	"github.com/workmate-ai/intake/internal/clarify"
	"github.com/workmate-ai/intake/internal/models"
	"github.com/workmate-ai/intake/internal/state"
	"github.com/workmate-ai/intake/internal/tools"
)

type Dispatcher struct {
	engine *clarify.Engine
	runner tools.Runner
}

func New(engine *clarify.Engine, runner tools.Runner) *Dispatcher {
	return &Dispatcher{engine: engine, runner: runner}
}

// Handle produces the turn's response and, for a completed request, at most
// one submission attempt. The transition logic is identical for every intake
// domain; only the tables in specs.go vary.
func (d *Dispatcher) Handle(ctx context.Context, turn *state.TurnContext) {
	turn.AddEvent(models.EventAgentStarted, map[string]any{"agent": "DomainAgent", "domain": turn.Domain})
	defer func() {
		turn.AddEvent(models.EventAgentFinished, map[string]any{"agent": "DomainAgent", "domain": turn.Domain})
	}()

	if turn.Domain == "doc_qa" {
		turn.Response = "Upload a document and ask your question."
		return
	}

	if len(clarify.TypesForDomain(turn.Domain)) == 0 {
		turn.Response = domainIntro(turn.Domain)
		return
	}

	d.handleIntake(ctx, turn)
}

func (d *Dispatcher) handleIntake(ctx context.Context, turn *state.TurnContext) {
	// In-flight request of an allowed type: extract scoped to that type and
	// keep filling slots.
	if pending := turn.Pending; pending != nil && clarify.DomainAllows(turn.Domain, pending.Type) {
		updates := d.engine.ExtractFields(ctx, pending.Type, turn.Message)
		clarify.Update(pending, updates)
		d.askOrSubmit(ctx, turn, pending)
		return
	}

	// No usable pending request: classify the message against the domain's
	// allowed types.
	requestType, fields := d.engine.ClassifyRequest(ctx, turn.Domain, turn.Message)
	if requestType == "" || !clarify.DomainAllows(turn.Domain, requestType) {
		// Unclassified is not an error; an unrelated pending request (if any)
		// passes through untouched.
		turn.Response = domainIntro(turn.Domain)
		return
	}

	pending := clarify.Build(turn.Domain, requestType, fields)
	pending.Sensitivity = turn.Sensitivity
	turn.Pending = pending
	d.askOrSubmit(ctx, turn, pending)
}

func (d *Dispatcher) askOrSubmit(ctx context.Context, turn *state.TurnContext, pending *clarify.PendingRequest) {
	if len(pending.Missing) > 0 {
		turn.Response = clarify.NextQuestion(pending)
		return
	}

	action := d.submit(ctx, turn, pending)
	turn.Actions = append(turn.Actions, action)

	// Cleared on success AND failure: a failed submission does not retain the
	// collected slots for retry, the user restarts from scratch.
	turn.Pending = nil

	spec := typeSpecs[pending.Type]
	if action.Status != models.StatusSubmitted {
		turn.Response = spec.failure(action)
		return
	}
	turn.Response = spec.success(pending)
}

func (d *Dispatcher) submit(ctx context.Context, turn *state.TurnContext, pending *clarify.PendingRequest) models.Action {
	spec := typeSpecs[pending.Type]

	route, err := spec.route(pending)
	if err != nil {
		return models.Action{Type: spec.actionType, Status: models.StatusFailed, Error: err.Error()}
	}

	turn.AddEvent(models.EventToolCall, map[string]any{"service": route.service, "path": route.path})

	result, err := d.runner.Call(ctx, route.service, http.MethodPost, route.path, route.payload)
	if err != nil {
		turn.AddEvent(models.EventToolError, map[string]any{"service": route.service, "error": err.Error()})
		return models.Action{
			Type:    spec.actionType,
			Status:  models.StatusFailed,
			Payload: route.payload,
			Error:   err.Error(),
		}
	}

	turn.AddEvent(models.EventToolResult, map[string]any{"service": route.service, "result": result})

	status, _ := result["status"].(string)
	if status == "" {
		status = models.StatusSubmitted
	}
	errMsg, _ := result["error"].(string)

	return models.Action{
		Type:    spec.actionType,
		Status:  status,
		Payload: route.payload,
		Error:   errMsg,
	}
}
