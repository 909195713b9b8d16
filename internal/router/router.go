// Package router decides which business domain a turn belongs to and how
// sensitive it is. It never fails to produce a result: LLM classification is
// backed by a keyword heuristic, which is backed by (generic, normal).
package router

import (
	"context"
	"strings"

	"github.com/workmate-ai/intake/internal/llm"
	"github.com/workmate-ai/intake/internal/models"
	"github.com/workmate-ai/intake/internal/prompts"
	"github.com/workmate-ai/intake/internal/state"
)

const (
	DefaultDomain      = "generic"
	DefaultSensitivity = "normal"
)

var domainValues = map[string]bool{
	"workspace": true,
	"hr":        true,
	"ops":       true,
	"it":        true,
	"doc_qa":    true,
	"generic":   true,
}

var sensitivityValues = map[string]bool{
	"normal":      true,
	"hr_personal": true,
	"salary":      true,
	"access":      true,
}

// Keyword tables for the deterministic fallback. Evaluated in order; the
// first domain with a matching keyword wins.
var domainKeywords = []struct {
	domain string
	words  []string
}{
	{"hr", []string{"leave", "vacation", "sick", "holiday", "payroll", "salary"}},
	{"ops", []string{"expense", "receipt", "reimburse", "travel", "flight", "hotel", "taxi"}},
	{"it", []string{"vpn", "wifi", "wi-fi", "laptop", "password", "access", "ticket", "software"}},
	{"workspace", []string{"room", "desk", "parking", "book", "facilities", "meeting"}},
	{"doc_qa", []string{"document", "policy", "pdf", "handbook"}},
}

var sensitivityKeywords = []struct {
	sensitivity string
	words       []string
}{
	{"salary", []string{"salary", "compensation", "payslip", "bonus"}},
	{"access", []string{"access", "permission", "credential"}},
	{"hr_personal", []string{"leave", "sick", "medical", "personal"}},
}

type Router struct {
	extractor *llm.Extractor
}

func New(extractor *llm.Extractor) *Router {
	return &Router{extractor: extractor}
}

// Classify annotates the turn with its (domain, sensitivity) pair. When a
// pending request exists the pair is carried over unconditionally: a
// conversation cannot change domain mid slot-filling.
func (r *Router) Classify(ctx context.Context, turn *state.TurnContext) {
	turn.AddEvent(models.EventAgentStarted, map[string]any{"agent": "RouterAgent"})
	defer func() {
		turn.AddEvent(models.EventAgentFinished, map[string]any{"agent": "RouterAgent"})
	}()

	if pending := turn.Pending; pending != nil {
		turn.Domain = pending.Domain
		if turn.Domain == "" {
			turn.Domain = DefaultDomain
		}
		turn.Sensitivity = pending.Sensitivity
		if turn.Sensitivity == "" {
			turn.Sensitivity = DefaultSensitivity
		}
		turn.AddEvent(models.EventRouterPending, map[string]any{"domain": turn.Domain})
		return
	}

	if domain, sensitivity, ok := r.classifyWithLLM(ctx, turn.Message); ok {
		turn.Domain = domain
		turn.Sensitivity = sensitivity
		turn.AddEvent(models.EventRouterLLM, map[string]any{
			"domain":      domain,
			"sensitivity": sensitivity,
		})
		return
	}

	if domain, sensitivity, ok := classifyByKeywords(turn.Message); ok {
		turn.Domain = domain
		turn.Sensitivity = sensitivity
		turn.AddEvent(models.EventRouterFallback, map[string]any{
			"domain":      domain,
			"sensitivity": sensitivity,
		})
		return
	}

	turn.Domain = DefaultDomain
	turn.Sensitivity = DefaultSensitivity
	turn.AddEvent(models.EventRouterDefault, nil)
}

// classifyWithLLM accepts the extraction result only when both fields are
// members of their fixed vocabularies.
func (r *Router) classifyWithLLM(ctx context.Context, message string) (string, string, bool) {
	payload := r.extractor.Extract(ctx, prompts.Router, message, 64)
	if payload == nil {
		return "", "", false
	}

	domain, _ := payload["domain"].(string)
	sensitivity, _ := payload["sensitivity"].(string)
	if !domainValues[domain] || !sensitivityValues[sensitivity] {
		return "", "", false
	}
	return domain, sensitivity, true
}

// classifyByKeywords is the deterministic fallback: case-insensitive substring
// matching against the keyword tables.
func classifyByKeywords(message string) (string, string, bool) {
	lowered := strings.ToLower(message)

	domain := ""
	for _, entry := range domainKeywords {
		if matchesAny(lowered, entry.words) {
			domain = entry.domain
			break
		}
	}
	if domain == "" {
		return "", "", false
	}

	sensitivity := DefaultSensitivity
	for _, entry := range sensitivityKeywords {
		if matchesAny(lowered, entry.words) {
			sensitivity = entry.sensitivity
			break
		}
	}
	return domain, sensitivity, true
}

func matchesAny(lowered string, words []string) bool {
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
