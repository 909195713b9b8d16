// Package chat orchestrates one conversation turn around the pipeline: load
// session state, run the turn, persist the outcome, append history.
package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/workmate-ai/intake/internal/clarify"
	"github.com/workmate-ai/intake/internal/memory"
	"github.com/workmate-ai/intake/internal/models"
	"github.com/workmate-ai/intake/internal/pipeline"
	"github.com/workmate-ai/intake/internal/state"
)

type Service struct {
	store           memory.Store
	history         *memory.Manager
	pipe            *pipeline.Pipeline
	defaultTenantID string
}

func NewService(store memory.Store, history *memory.Manager, pipe *pipeline.Pipeline, defaultTenantID string) *Service {
	return &Service{
		store:           store,
		history:         history,
		pipe:            pipe,
		defaultTenantID: defaultTenantID,
	}
}

// Result is the outcome of one handled turn.
type Result struct {
	SessionID string
	Response  string
	Actions   []models.Action
	Pending   *clarify.PendingRequest
	Events    []models.Event
}

// HandleTurn processes a single user message. Session state is read once at
// entry and written once at exit; nothing is persisted if the turn fails
// before that point.
func (s *Service) HandleTurn(ctx context.Context, req *models.ChatRequest) (*Result, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = s.defaultTenantID
	}

	pending, err := s.store.GetPending(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending request: %w", err)
	}

	turn := &state.TurnContext{
		TenantID:  tenantID,
		SessionID: sessionID,
		Message:   req.Message,
		User:      req.User,
		Pending:   pending,
		Actions:   []models.Action{},
		Events:    []models.Event{},
	}

	s.pipe.Run(ctx, turn)

	if turn.Pending != nil {
		if err := s.store.SetPending(ctx, tenantID, sessionID, turn.Pending); err != nil {
			return nil, fmt.Errorf("failed to persist pending request: %w", err)
		}
	} else {
		if err := s.store.ClearPending(ctx, tenantID, sessionID); err != nil {
			return nil, fmt.Errorf("failed to clear pending request: %w", err)
		}
	}

	if err := s.history.AppendUserMessage(ctx, tenantID, sessionID, req.Message); err != nil {
		return nil, fmt.Errorf("failed to append user message: %w", err)
	}
	if err := s.history.AppendAssistantMessage(ctx, tenantID, sessionID, turn.Response); err != nil {
		return nil, fmt.Errorf("failed to append assistant message: %w", err)
	}

	log.Printf("💬 Turn handled: session=%s tenant=%s domain=%s pending=%t actions=%d",
		sessionID, tenantID, turn.Domain, turn.Pending != nil, len(turn.Actions))

	return &Result{
		SessionID: sessionID,
		Response:  turn.Response,
		Actions:   turn.Actions,
		Pending:   turn.Pending,
		Events:    turn.Events,
	}, nil
}
