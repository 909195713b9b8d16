package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lcmemory "github.com/tmc/langchaingo/memory"
	"github.com/tmc/langchaingo/schema"
)

// Manager mirrors session history into LangChainGo conversation buffers so a
// formatted transcript can be served without re-reading Redis on every
// request. The store stays the source of truth; buffers are a cache.
type Manager struct {
	store Store

	mu       sync.Mutex
	sessions map[string]*lcmemory.ConversationBuffer
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sessions: make(map[string]*lcmemory.ConversationBuffer),
	}
}

func bufferKey(tenantID, sessionID string) string {
	return tenantID + ":" + sessionID
}

// buffer returns the cached conversation buffer for a session, loading the
// stored history into a fresh one on first access.
func (m *Manager) buffer(ctx context.Context, tenantID, sessionID string) (*lcmemory.ConversationBuffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := bufferKey(tenantID, sessionID)
	if buf, exists := m.sessions[key]; exists {
		return buf, nil
	}

	buf := lcmemory.NewConversationBuffer()

	history, err := m.store.History(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}

	for _, msg := range history {
		var chatMsg schema.ChatMessage
		switch msg.Role {
		case "user":
			chatMsg = schema.HumanChatMessage{Content: msg.Content}
		case "assistant":
			chatMsg = schema.AIChatMessage{Content: msg.Content}
		default:
			continue
		}
		if err := buf.ChatHistory.AddMessage(ctx, chatMsg); err != nil {
			return nil, fmt.Errorf("failed to add message to buffer: %w", err)
		}
	}

	m.sessions[key] = buf
	return buf, nil
}

// AppendUserMessage records a user message in both the store and the buffer.
func (m *Manager) AppendUserMessage(ctx context.Context, tenantID, sessionID, content string) error {
	buf, err := m.buffer(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if err := buf.ChatHistory.AddUserMessage(ctx, content); err != nil {
		return fmt.Errorf("failed to buffer user message: %w", err)
	}
	return m.store.AppendMessage(ctx, tenantID, sessionID, "user", content)
}

// AppendAssistantMessage records an assistant message in both the store and
// the buffer.
func (m *Manager) AppendAssistantMessage(ctx context.Context, tenantID, sessionID, content string) error {
	buf, err := m.buffer(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if err := buf.ChatHistory.AddAIMessage(ctx, content); err != nil {
		return fmt.Errorf("failed to buffer assistant message: %w", err)
	}
	return m.store.AppendMessage(ctx, tenantID, sessionID, "assistant", content)
}

// FormattedHistory renders the session transcript for the history endpoint.
func (m *Manager) FormattedHistory(ctx context.Context, tenantID, sessionID string) (string, error) {
	buf, err := m.buffer(ctx, tenantID, sessionID)
	if err != nil {
		return "", err
	}

	messages, err := buf.ChatHistory.Messages(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get buffered messages: %w", err)
	}
	if len(messages) == 0 {
		return "No previous conversation.", nil
	}

	var builder strings.Builder
	for _, msg := range messages {
		switch typed := msg.(type) {
		case schema.HumanChatMessage:
			fmt.Fprintf(&builder, "User: %s\n", typed.Content)
		case schema.AIChatMessage:
			fmt.Fprintf(&builder, "Assistant: %s\n", typed.Content)
		case schema.SystemChatMessage:
			fmt.Fprintf(&builder, "System: %s\n", typed.Content)
		}
	}
	return builder.String(), nil
}

// ActiveSessionCount returns the number of cached session buffers.
func (m *Manager) ActiveSessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close closes the underlying store if it holds a connection.
func (m *Manager) Close() error {
	if closer, ok := m.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
