package llm

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/workmate-ai/intake/internal/prompts"
)

// Extractor coerces free-form model output into a JSON object. A failed parse
// triggers exactly one repair round, so every Extract call is at most two
// backend round-trips.
type Extractor struct {
	provider Provider
}

func NewExtractor(provider Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract calls the backend and parses its output as a single JSON object.
// Returns nil when no stage produces one; parse and I/O failures never
// propagate, since a missing classification must not crash the turn.
func (e *Extractor) Extract(ctx context.Context, systemPrompt, userMessage string, maxTokens int) map[string]any {
	raw, err := e.provider.Generate(ctx, systemPrompt, userMessage, maxTokens)
	if err != nil {
		log.Printf("LLM call failed: %v", err)
		return nil
	}

	if obj := parseObject(raw); obj != nil {
		return obj
	}

	// One repair round: feed the unparseable output back to the model.
	repaired, err := e.provider.Generate(ctx, prompts.RepairJSON, raw, maxTokens)
	if err != nil {
		log.Printf("LLM repair call failed: %v", err)
		return nil
	}

	return parseObject(repaired)
}

// parseObject tries a strict unmarshal first, then the first balanced {...}
// span in the raw text.
func parseObject(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj
	}

	span := firstJSONObject(raw)
	if span == "" {
		return nil
	}

	obj = nil
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil
	}
	return obj
}

// firstJSONObject returns the first balanced {...} span in raw, tracking
// string and escape state so braces inside string literals do not count.
func firstJSONObject(raw string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}

	return ""
}
