package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workmate-ai/intake/internal/clarify"
	"github.com/workmate-ai/intake/internal/llm"
	"github.com/workmate-ai/intake/internal/models"
	"github.com/workmate-ai/intake/internal/state"
)

type stubProvider struct {
	response string
	err      error
}

func (p *stubProvider) Generate(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	return p.response, p.err
}

func newTestRouter(response string, err error) *Router {
	return New(llm.NewExtractor(&stubProvider{response: response, err: err}))
}

func eventTypes(events []models.Event) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestClassifyCarriesOverPendingDomain(t *testing.T) {
	r := newTestRouter(`{"domain": "ops", "sensitivity": "normal"}`, nil)
	turn := &state.TurnContext{
		Message: "actually, let's talk about expenses instead",
		Pending: &clarify.PendingRequest{Domain: "hr", Type: clarify.TypeLeave, Sensitivity: "hr_personal"},
	}

	r.Classify(context.Background(), turn)

	assert.Equal(t, "hr", turn.Domain, "a conversation cannot change domain mid slot-filling")
	assert.Equal(t, "hr_personal", turn.Sensitivity)
	assert.Contains(t, eventTypes(turn.Events), models.EventRouterPending)
}

func TestClassifyPendingWithoutSensitivityDefaults(t *testing.T) {
	r := newTestRouter(``, nil)
	turn := &state.TurnContext{
		Pending: &clarify.PendingRequest{Domain: "it", Type: clarify.TypeTicket},
	}

	r.Classify(context.Background(), turn)

	assert.Equal(t, "it", turn.Domain)
	assert.Equal(t, DefaultSensitivity, turn.Sensitivity)
}

func TestClassifyWithLLM(t *testing.T) {
	r := newTestRouter(`{"domain": "hr", "sensitivity": "hr_personal"}`, nil)
	turn := &state.TurnContext{Message: "I need some time off"}

	r.Classify(context.Background(), turn)

	assert.Equal(t, "hr", turn.Domain)
	assert.Equal(t, "hr_personal", turn.Sensitivity)
	assert.Contains(t, eventTypes(turn.Events), models.EventRouterLLM)
}

func TestClassifyRejectsOutOfVocabulary(t *testing.T) {
	r := newTestRouter(`{"domain": "finance", "sensitivity": "normal"}`, nil)
	turn := &state.TurnContext{Message: "I want to book a meeting room"}

	r.Classify(context.Background(), turn)

	// The out-of-vocabulary LLM answer is discarded and the keyword
	// heuristic takes over.
	assert.Equal(t, "workspace", turn.Domain)
	assert.Contains(t, eventTypes(turn.Events), models.EventRouterFallback)
}

func TestClassifyKeywordFallbackOnTimeout(t *testing.T) {
	r := newTestRouter("", errors.New("deadline exceeded"))
	turn := &state.TurnContext{Message: "My VPN is not working again"}

	r.Classify(context.Background(), turn)

	assert.Equal(t, "it", turn.Domain)
	assert.Equal(t, DefaultSensitivity, turn.Sensitivity)
	assert.Contains(t, eventTypes(turn.Events), models.EventRouterFallback)
}

func TestClassifyKeywordSensitivity(t *testing.T) {
	r := newTestRouter("", errors.New("backend down"))
	turn := &state.TurnContext{Message: "I need sick leave next week"}

	r.Classify(context.Background(), turn)

	assert.Equal(t, "hr", turn.Domain)
	assert.Equal(t, "hr_personal", turn.Sensitivity)
}

func TestClassifyDefaultsWhenNothingMatches(t *testing.T) {
	r := newTestRouter("", errors.New("backend down"))
	turn := &state.TurnContext{Message: "tell me a joke"}

	r.Classify(context.Background(), turn)

	assert.Equal(t, DefaultDomain, turn.Domain)
	assert.Equal(t, DefaultSensitivity, turn.Sensitivity)
	assert.Contains(t, eventTypes(turn.Events), models.EventRouterDefault)
}

func TestClassifyBracketsWithAgentEvents(t *testing.T) {
	r := newTestRouter("", errors.New("backend down"))
	turn := &state.TurnContext{Message: "hello"}

	r.Classify(context.Background(), turn)

	types := eventTypes(turn.Events)
	assert.Equal(t, models.EventAgentStarted, types[0])
	assert.Equal(t, models.EventAgentFinished, types[len(types)-1])
}
