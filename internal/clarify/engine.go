package clarify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/workmate-ai/intake/internal/llm"
	"github.com/workmate-ai/intake/internal/prompts"
)

const extractMaxTokens = 256

// Engine wraps the two clarification operations that touch the model backend.
// Everything else in this package stays pure.
type Engine struct {
	extractor *llm.Extractor
}

func NewEngine(extractor *llm.Extractor) *Engine {
	return &Engine{extractor: extractor}
}

// ClassifyRequest maps a fresh message onto one of the request types allowed
// for the domain and extracts whatever fields came along with it. Returns
// ("", nil) on any validation failure; this is only called when no pending
// request exists.
func (e *Engine) ClassifyRequest(ctx context.Context, domain, message string) (RequestType, map[string]any) {
	allowed := requestTypesByDomain[domain]
	if len(allowed) == 0 {
		return "", nil
	}

	payload := e.extractor.Extract(ctx, classificationPrompt(domain, allowed), message, extractMaxTokens)
	if payload == nil {
		log.Printf("classify_request got empty payload for domain=%s", domain)
		return "", nil
	}

	raw, _ := payload["request_type"].(string)
	requestType := ParseRequestType(raw)
	if requestType == "" || !containsType(allowed, requestType) {
		log.Printf("classify_request invalid type %q for domain %s", raw, domain)
		return "", nil
	}

	fields, _ := payload["fields"].(map[string]any)
	return requestType, normalizeFields(requestType, fields)
}

// ExtractFields pulls fields for a known request type out of a follow-up
// message. If the model declares a different type than requested the result
// is discarded: field extraction must never reinterpret the active request's
// type mid-turn.
func (e *Engine) ExtractFields(ctx context.Context, requestType RequestType, message string) map[string]any {
	desc, ok := fieldDescriptions[requestType]
	if !ok {
		return map[string]any{}
	}

	payload := e.extractor.Extract(ctx, prompts.Extraction(string(requestType), desc), message, extractMaxTokens)
	if payload == nil {
		log.Printf("extract_fields got empty payload for type=%s", requestType)
		return map[string]any{}
	}

	if declared, _ := payload["request_type"].(string); declared != "" && RequestType(declared) != requestType {
		log.Printf("extract_fields mismatched type %q (expected %s)", declared, requestType)
		return map[string]any{}
	}

	fields, _ := payload["fields"].(map[string]any)
	return normalizeFields(requestType, fields)
}

func classificationPrompt(domain string, allowed []RequestType) string {
	values := make([]string, len(allowed))
	details := make([]string, len(allowed))
	for i, rt := range allowed {
		values[i] = string(rt)
		details[i] = fmt.Sprintf("%s: %s", rt, fieldDescriptions[rt])
	}
	return prompts.Classification(domain, values, strings.Join(details, "; "))
}

func containsType(allowed []RequestType, requestType RequestType) bool {
	for _, rt := range allowed {
		if rt == requestType {
			return true
		}
	}
	return false
}
