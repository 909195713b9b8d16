package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmate-ai/intake/internal/clarify"
	"github.com/workmate-ai/intake/internal/dispatch"
	"github.com/workmate-ai/intake/internal/guardrail"
	"github.com/workmate-ai/intake/internal/llm"
	"github.com/workmate-ai/intake/internal/memory"
	"github.com/workmate-ai/intake/internal/models"
	"github.com/workmate-ai/intake/internal/pipeline"
	"github.com/workmate-ai/intake/internal/router"
)

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	mu      sync.Mutex
	pending map[string]*clarify.PendingRequest
	history map[string][]memory.Message
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending: make(map[string]*clarify.PendingRequest),
		history: make(map[string][]memory.Message),
	}
}

func key(tenantID, sessionID string) string { return tenantID + ":" + sessionID }

func (f *fakeStore) GetPending(ctx context.Context, tenantID, sessionID string) (*clarify.PendingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.pending[key(tenantID, sessionID)], nil
}

func (f *fakeStore) SetPending(ctx context.Context, tenantID, sessionID string, pending *clarify.PendingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[key(tenantID, sessionID)] = pending
	return nil
}

func (f *fakeStore) ClearPending(ctx context.Context, tenantID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, key(tenantID, sessionID))
	return nil
}

func (f *fakeStore) AppendMessage(ctx context.Context, tenantID, sessionID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(tenantID, sessionID)
	f.history[k] = append(f.history[k], memory.Message{Role: role, Content: content})
	return nil
}

func (f *fakeStore) History(ctx context.Context, tenantID, sessionID string) ([]memory.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[key(tenantID, sessionID)], nil
}

type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) Generate(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	p.calls++
	if p.calls > len(p.responses) {
		return "", errors.New("no scripted response left")
	}
	return p.responses[p.calls-1], nil
}

type stubRunner struct{}

func (stubRunner) Call(ctx context.Context, service, method, path string, payload map[string]any) (map[string]any, error) {
	return map[string]any{"status": "submitted"}, nil
}

func newService(store memory.Store, responses []string) *Service {
	extractor := llm.NewExtractor(&scriptedProvider{responses: responses})
	pipe := pipeline.New(
		router.New(extractor),
		dispatch.New(clarify.NewEngine(extractor), stubRunner{}),
		guardrail.New(),
	)
	return NewService(store, memory.NewManager(store), pipe, "default")
}

func TestHandleTurnGeneratesSessionID(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, nil)

	result, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		Message: "hello",
		User:    models.UserContext{UserID: "u1"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
}

func TestHandleTurnPersistsPendingAcrossTurns(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, []string{
		`{"domain": "hr", "sensitivity": "normal"}`,
		`{"request_type": "leave", "fields": {"leave_type": "sick"}}`,
	})

	result, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		Message:   "I need sick leave",
		SessionID: "s1",
		TenantID:  "acme",
		User:      models.UserContext{UserID: "u1"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Pending)

	stored, err := store.GetPending(context.Background(), "acme", "s1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, clarify.TypeLeave, stored.Type)
	assert.Equal(t, []string{"start_date", "end_date"}, stored.Missing)

	// Completing turn: the store read feeds the pipeline and the completed
	// request clears the stored pending state.
	svc = newService(store, []string{
		`{"request_type": "leave", "fields": {"start_date": "2026-09-01", "end_date": "2026-09-02"}}`,
	})
	result, err = svc.HandleTurn(context.Background(), &models.ChatRequest{
		Message:   "September 1st to 2nd",
		SessionID: "s1",
		TenantID:  "acme",
		User:      models.UserContext{UserID: "u1"},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Pending)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, models.StatusSubmitted, result.Actions[0].Status)

	stored, err = store.GetPending(context.Background(), "acme", "s1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestHandleTurnAppendsHistory(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, nil)

	_, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		Message:   "hello",
		SessionID: "s1",
		User:      models.UserContext{UserID: "u1"},
	})
	require.NoError(t, err)

	history, err := store.History(context.Background(), "default", "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, memory.Message{Role: "user", Content: "hello"}, history[0])
	assert.Equal(t, "assistant", history[1].Role)
	assert.NotEmpty(t, history[1].Content)
}

func TestHandleTurnStoreFailureWritesNothing(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("redis down")
	svc := newService(store, nil)

	_, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		Message:   "hello",
		SessionID: "s1",
		User:      models.UserContext{UserID: "u1"},
	})

	require.Error(t, err)
	history, _ := store.History(context.Background(), "default", "s1")
	assert.Empty(t, history, "a turn that fails at entry persists nothing")
}

func TestHandleTurnDefaultsTenant(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, []string{
		`{"domain": "hr", "sensitivity": "normal"}`,
		`{"request_type": "leave", "fields": {"leave_type": "sick"}}`,
	})

	_, err := svc.HandleTurn(context.Background(), &models.ChatRequest{
		Message:   "I need sick leave",
		SessionID: "s1",
		User:      models.UserContext{UserID: "u1"},
	})
	require.NoError(t, err)

	stored, err := store.GetPending(context.Background(), "default", "s1")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
