package clarify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmate-ai/intake/internal/llm"
)

type stubProvider struct {
	response string
	err      error
	calls    int
}

func (p *stubProvider) Generate(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	p.calls++
	return p.response, p.err
}

func newTestEngine(response string, err error) (*Engine, *stubProvider) {
	provider := &stubProvider{response: response, err: err}
	return NewEngine(llm.NewExtractor(provider)), provider
}

func TestClassifyRequestValid(t *testing.T) {
	engine, _ := newTestEngine(`{"request_type": "leave", "fields": {"leave_type": "sick"}}`, nil)

	requestType, fields := engine.ClassifyRequest(context.Background(), "hr", "I need sick leave tomorrow")

	assert.Equal(t, TypeLeave, requestType)
	require.NotNil(t, fields)
	assert.Equal(t, "sick", fields["leave_type"])
	assert.Nil(t, fields["start_date"])
}

func TestClassifyRequestTypeNotAllowedForDomain(t *testing.T) {
	// The model declares a real type, but one the hr domain cannot reach.
	engine, _ := newTestEngine(`{"request_type": "expense", "fields": {}}`, nil)

	requestType, fields := engine.ClassifyRequest(context.Background(), "hr", "log my taxi expense")

	assert.Equal(t, RequestType(""), requestType)
	assert.Nil(t, fields)
}

func TestClassifyRequestUnknownDomain(t *testing.T) {
	engine, provider := newTestEngine(`{"request_type": "leave", "fields": {}}`, nil)

	requestType, _ := engine.ClassifyRequest(context.Background(), "generic", "hello")

	assert.Equal(t, RequestType(""), requestType)
	assert.Equal(t, 0, provider.calls, "domains with no request types never call the backend")
}

func TestClassifyRequestBackendFailure(t *testing.T) {
	engine, _ := newTestEngine("", errors.New("timeout"))

	requestType, fields := engine.ClassifyRequest(context.Background(), "hr", "I need leave")

	assert.Equal(t, RequestType(""), requestType)
	assert.Nil(t, fields)
}

func TestExtractFieldsValid(t *testing.T) {
	engine, _ := newTestEngine(`{"request_type": "leave", "fields": {"start_date": "2026-09-01", "end_date": "2026-09-02"}}`, nil)

	fields := engine.ExtractFields(context.Background(), TypeLeave, "from the 1st to the 2nd")

	assert.Equal(t, "2026-09-01", fields["start_date"])
	assert.Equal(t, "2026-09-02", fields["end_date"])
}

func TestExtractFieldsMismatchedTypeDiscarded(t *testing.T) {
	// Field extraction must never reinterpret the active request's type.
	engine, _ := newTestEngine(`{"request_type": "expense", "fields": {"amount": 45}}`, nil)

	fields := engine.ExtractFields(context.Background(), TypeLeave, "it cost 45 dollars")

	assert.Empty(t, fields)
}

func TestExtractFieldsMissingDeclaredTypeAccepted(t *testing.T) {
	engine, _ := newTestEngine(`{"fields": {"leave_type": "annual"}}`, nil)

	fields := engine.ExtractFields(context.Background(), TypeLeave, "annual please")

	assert.Equal(t, "annual", fields["leave_type"])
}

func TestExtractFieldsEmptyPayload(t *testing.T) {
	engine, _ := newTestEngine(`no json here at all`, nil)

	fields := engine.ExtractFields(context.Background(), TypeLeave, "hmm")

	assert.Empty(t, fields)
}
