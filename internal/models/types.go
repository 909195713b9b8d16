package models

// UserContext is the caller identity supplied by the upstream auth boundary.
// Only Roles is consulted inside the core (by the guardrail).
type UserContext struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the caller carries the given role.
func (u UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NATS request from the API gateway
type ChatRequest struct {
	Message   string      `json:"message"`
	SessionID string      `json:"session_id,omitempty"`
	TenantID  string      `json:"tenant_id,omitempty"`
	User      UserContext `json:"user"`
}

// NATS response to the API gateway
type ChatResponse struct {
	SessionID      string   `json:"session_id"`
	Message        string   `json:"message"`
	Actions        []Action `json:"actions"`
	PendingRequest any      `json:"pending_request,omitempty"`
	Events         []Event  `json:"events,omitempty"`
	ErrorCode      *string  `json:"error_code,omitempty"`
	ErrorMessage   *string  `json:"error_message,omitempty"`
}

// HistoryRequest asks for the formatted transcript of a session.
type HistoryRequest struct {
	SessionID string `json:"session_id"`
	TenantID  string `json:"tenant_id,omitempty"`
}

type HistoryResponse struct {
	SessionID string `json:"session_id"`
	History   string `json:"history"`
}

// Action records one attempt to hand a completed request to a downstream
// domain service.
type Action struct {
	Type    string         `json:"type"`
	Status  string         `json:"status"`
	Payload map[string]any `json:"payload"`
	Error   string         `json:"error,omitempty"`
}

// Action status constants
const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Event is a diagnostic log entry appended during a turn. Events have no
// control-flow effect.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Event types emitted by the pipeline stages
const (
	EventAgentStarted     = "agent_started"
	EventAgentFinished    = "agent_finished"
	EventRouterPending    = "router_pending"
	EventRouterLLM        = "router_classified_llm"
	EventRouterFallback   = "router_classified_fallback"
	EventRouterDefault    = "router_classified_default"
	EventToolCall         = "tool_call"
	EventToolResult       = "tool_result"
	EventToolError        = "tool_error"
	EventGuardrailBlocked = "guardrail_blocked"
)

// Error codes
const (
	ErrorLLMTimeout = "LLM_API_TIMEOUT"
	ErrorLLMFailed  = "LLM_API_FAILED"
	ErrorParseError = "PARSE_ERROR"
	ErrorStoreError = "SESSION_STORE_FAILED"
)
