package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/workmate-ai/intake/internal/chat"
	"github.com/workmate-ai/intake/internal/config"
	"github.com/workmate-ai/intake/internal/memory"
	"github.com/workmate-ai/intake/internal/models"
)

type NATSTransport struct {
	conn    *nats.Conn
	config  *config.Config
	service *chat.Service
	history *memory.Manager
}

func NewNATSTransport(cfg *config.Config, service *chat.Service, history *memory.Manager) (*NATSTransport, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("Connected to NATS server: %s", cfg.NatsURL)

	return &NATSTransport{
		conn:    conn,
		config:  cfg,
		service: service,
		history: history,
	}, nil
}

func (nt *NATSTransport) Start() error {
	if _, err := nt.conn.Subscribe(nt.config.NatsChatSubject, nt.handleChatRequest); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsChatSubject, err)
	}
	log.Printf("Subscribed to subject: %s", nt.config.NatsChatSubject)

	if _, err := nt.conn.Subscribe(nt.config.NatsHistorySubject, nt.handleHistoryRequest); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsHistorySubject, err)
	}
	log.Printf("Subscribed to subject: %s", nt.config.NatsHistorySubject)

	return nil
}

func (nt *NATSTransport) handleChatRequest(msg *nats.Msg) {
	var request models.ChatRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		log.Printf("Error parsing chat request: %v", err)
		nt.sendErrorResponse(msg, "", models.ErrorParseError, "Invalid request format")
		return
	}

	if request.Message == "" {
		nt.sendErrorResponse(msg, request.SessionID, models.ErrorParseError, "message is required")
		return
	}

	log.Printf("Processing chat turn for session: %s", request.SessionID)

	ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout)
	defer cancel()

	result, err := nt.service.HandleTurn(ctx, &request)
	if err != nil {
		log.Printf("Error handling turn: %v", err)
		nt.sendErrorResponse(msg, request.SessionID, models.ErrorStoreError, err.Error())
		return
	}

	response := &models.ChatResponse{
		SessionID: result.SessionID,
		Message:   result.Response,
		Actions:   result.Actions,
		Events:    result.Events,
	}
	if result.Pending != nil {
		response.PendingRequest = result.Pending
	}

	if err := nt.sendResponse(msg, response); err != nil {
		log.Printf("Error sending response: %v", err)
	}
}

func (nt *NATSTransport) handleHistoryRequest(msg *nats.Msg) {
	var request models.HistoryRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil || request.SessionID == "" {
		log.Printf("Error parsing history request: %v", err)
		nt.respondJSON(msg, &models.HistoryResponse{})
		return
	}

	tenantID := request.TenantID
	if tenantID == "" {
		tenantID = nt.config.DefaultTenantID
	}

	ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout)
	defer cancel()

	formatted, err := nt.history.FormattedHistory(ctx, tenantID, request.SessionID)
	if err != nil {
		log.Printf("Error loading history for session %s: %v", request.SessionID, err)
		formatted = ""
	}

	nt.respondJSON(msg, &models.HistoryResponse{
		SessionID: request.SessionID,
		History:   formatted,
	})
}

func (nt *NATSTransport) sendResponse(msg *nats.Msg, response *models.ChatResponse) error {
	responseData, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := msg.Respond(responseData); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Printf("Response sent for session: %s", response.SessionID)
	return nil
}

func (nt *NATSTransport) sendErrorResponse(msg *nats.Msg, sessionID, errorCode, errorMessage string) {
	response := &models.ChatResponse{
		SessionID:    sessionID,
		Message:      "I'm sorry, I encountered an error processing your request. Please try again.",
		Actions:      []models.Action{},
		ErrorCode:    &errorCode,
		ErrorMessage: &errorMessage,
	}

	if err := nt.sendResponse(msg, response); err != nil {
		log.Printf("Failed to send error response: %v", err)
	}
}

func (nt *NATSTransport) respondJSON(msg *nats.Msg, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal reply: %v", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		log.Printf("Failed to send reply: %v", err)
	}
}

func (nt *NATSTransport) Close() error {
	if nt.conn != nil {
		nt.conn.Close()
		log.Println("NATS connection closed")
	}
	return nil
}
