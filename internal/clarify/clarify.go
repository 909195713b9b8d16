// Package clarify owns the request-type schemas and the slot-filling state of
// a conversation: which fields a request needs, which are still missing, and
// what to ask next. Everything here except the Engine is a pure function of
// its inputs so the slot-filling logic is testable without a model backend.
package clarify

import (
	"strings"

	"github.com/workmate-ai/intake/internal/prompts"
)

// RequestType is the closed set of request kinds the assistant can intake.
type RequestType string

const (
	TypeLeave            RequestType = "leave"
	TypeExpense          RequestType = "expense"
	TypeTravel           RequestType = "travel"
	TypeAccess           RequestType = "access"
	TypeTicket           RequestType = "ticket"
	TypeWorkspaceBooking RequestType = "workspace_booking"
)

// StepCollecting is the single intermediate lifecycle step between creation
// and submission of a pending request.
const StepCollecting = "collecting_details"

// PendingRequest is the partially-filled representation of a user's intent,
// persisted between turns. Missing is always recomputed from (Type, Filled)
// after a mutation, never stored stale.
type PendingRequest struct {
	Domain      string         `json:"domain"`
	Type        RequestType    `json:"type"`
	Filled      map[string]any `json:"filled"`
	Missing     []string       `json:"missing"`
	Step        string         `json:"step"`
	Subtype     string         `json:"subtype,omitempty"`
	Sensitivity string         `json:"sensitivity,omitempty"`
}

var fieldSets = map[RequestType][]string{
	TypeLeave:   {"leave_type", "start_date", "end_date", "reason"},
	TypeExpense: {"amount", "currency", "date", "category", "project_code"},
	TypeTravel:  {"origin", "destination", "departure_date", "return_date", "class"},
	TypeAccess:  {"resource", "requested_role", "justification"},
	TypeTicket:  {"subtype", "description", "location"},
	TypeWorkspaceBooking: {
		"resource_type",
		"resource_name",
		"start_time",
		"end_time",
		"location",
		"description",
	},
}

var fieldDescriptions = map[RequestType]string{
	TypeLeave:            "leave_type, start_date (YYYY-MM-DD), end_date (YYYY-MM-DD), reason",
	TypeExpense:          "amount (number), currency (ISO 4217), date (YYYY-MM-DD), category, project_code",
	TypeTravel:           "origin, destination, departure_date (YYYY-MM-DD), return_date (YYYY-MM-DD), class",
	TypeAccess:           "resource, requested_role (read/write/admin), justification",
	TypeTicket:           "subtype (it or facilities), description, location",
	TypeWorkspaceBooking: "resource_type (room/desk/equipment/parking), resource_name, start_time (natural language ok), end_time (natural language ok), location, description",
}

var questionMap = map[string]string{
	"leave_type":     "What kind of leave do you want to take (e.g., annual, sick)?",
	"start_date":     "Which exact start date do you want? Please use YYYY-MM-DD.",
	"end_date":       "Which exact end date do you want? Please use YYYY-MM-DD.",
	"start_time":     "What is the start time? (e.g., tomorrow 9am, 2026-02-01 09:00)",
	"end_time":       "What is the end time? (e.g., tomorrow 11am, 2026-02-01 11:00)",
	"amount":         "How much was the expense?",
	"currency":       "What currency was this in (e.g., USD, THB)?",
	"date":           "When did this expense occur? Please use YYYY-MM-DD.",
	"category":       "What type of expense is this (e.g., taxi, hotel, meal)?",
	"origin":         "Which city or airport are you departing from?",
	"destination":    "What is the destination city or airport?",
	"departure_date": "What is the departure date? Please use YYYY-MM-DD.",
	"return_date":    "What is the return date? Please use YYYY-MM-DD.",
	"subtype":        "Is this an IT issue or a facilities issue?",
	"description":    "Can you describe the issue in a sentence?",
	"location":       "Which room or area is this in?",
	"resource":       "Which system or repo do you need access to?",
	"requested_role": "What level of access do you need (read, write, admin)?",
	"justification":  "Briefly explain why you need this access.",
	"resource_type":  "What do you want to book (room, desk, equipment, parking)?",
	"resource_name":  "Which resource should I book (e.g., Room 1, Desk #2)?",
}

var requestTypesByDomain = map[string][]RequestType{
	"hr":        {TypeLeave},
	"ops":       {TypeExpense, TypeTravel},
	"it":        {TypeAccess, TypeTicket},
	"workspace": {TypeWorkspaceBooking},
}

// TypesForDomain returns the request types reachable from a domain.
func TypesForDomain(domain string) []RequestType {
	return requestTypesByDomain[domain]
}

// DomainAllows reports whether a request type is reachable from a domain.
func DomainAllows(domain string, requestType RequestType) bool {
	return containsType(requestTypesByDomain[domain], requestType)
}

// ParseRequestType maps a raw string onto the closed enum, or "" if unknown.
func ParseRequestType(value string) RequestType {
	rt := RequestType(value)
	if _, ok := fieldSets[rt]; ok {
		return rt
	}
	return ""
}

// Build initializes a pending request from freshly extracted fields.
func Build(domain string, requestType RequestType, fields map[string]any) *PendingRequest {
	pending := &PendingRequest{
		Domain: domain,
		Type:   requestType,
		Filled: normalizeFields(requestType, fields),
		Step:   StepCollecting,
	}
	pending.Missing = MissingFields(pending)
	pending.Subtype = subtypeOf(pending)
	return pending
}

// Update merges normalized updates into the filled map. Only non-null incoming
// values overwrite; a null never clobbers a previously collected value.
func Update(pending *PendingRequest, updates map[string]any) *PendingRequest {
	if pending.Filled == nil {
		pending.Filled = make(map[string]any)
	}
	for key, value := range normalizeFields(pending.Type, updates) {
		if value != nil {
			pending.Filled[key] = value
		}
	}
	pending.Missing = MissingFields(pending)
	if s := subtypeOf(pending); s != "" {
		pending.Subtype = s
	}
	return pending
}

// MissingFields evaluates the required-field rule for the pending request's
// type. The ticket rule is the one conditional requirement in the system:
// location is required only for facilities tickets, so the rule must be
// re-evaluated on every call rather than cached.
func MissingFields(pending *PendingRequest) []string {
	required := requiredFields(pending.Type, pending.Filled)

	missing := []string{}
	for _, key := range required {
		if isMissing(pending.Filled[key]) {
			missing = append(missing, key)
		}
	}
	return missing
}

// NextQuestion returns the prompt for the first missing field, or "" when the
// request is complete and submission should proceed.
func NextQuestion(pending *PendingRequest) string {
	if len(pending.Missing) == 0 {
		return ""
	}
	if question, ok := questionMap[pending.Missing[0]]; ok {
		return question
	}
	return prompts.ClarifyFallback
}

func requiredFields(requestType RequestType, filled map[string]any) []string {
	switch requestType {
	case TypeLeave:
		return []string{"leave_type", "start_date", "end_date"}
	case TypeExpense:
		return []string{"amount", "currency", "date", "category"}
	case TypeTravel:
		return []string{"origin", "destination", "departure_date", "return_date"}
	case TypeAccess:
		return []string{"resource", "requested_role", "justification"}
	case TypeTicket:
		required := []string{"subtype", "description"}
		if subtype, ok := filled["subtype"].(string); ok && subtype == "facilities" {
			required = append(required, "location")
		}
		return required
	case TypeWorkspaceBooking:
		return []string{"resource_type", "resource_name", "start_time", "end_time"}
	}
	return nil
}

// normalizeFields projects raw extracted fields onto the type's field set:
// unknown keys are dropped, absent keys become null, blank strings collapse
// to null.
func normalizeFields(requestType RequestType, fields map[string]any) map[string]any {
	normalized := make(map[string]any)
	allowed, ok := fieldSets[requestType]
	if !ok {
		return normalized
	}
	for _, key := range allowed {
		value := fields[key]
		if isMissing(value) {
			value = nil
		}
		normalized[key] = value
	}
	return normalized
}

func isMissing(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

// subtypeOf tracks the discriminator field for types that have one: the
// ticket subtype and the workspace resource type.
func subtypeOf(pending *PendingRequest) string {
	switch pending.Type {
	case TypeTicket:
		if s, ok := pending.Filled["subtype"].(string); ok {
			return s
		}
	case TypeWorkspaceBooking:
		if s, ok := pending.Filled["resource_type"].(string); ok {
			return s
		}
	}
	return ""
}
