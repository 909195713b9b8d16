package llm

import "context"

// Provider is the opaque text-generation backend. Implementations must return
// the raw completion text; callers tolerate any output shape.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error)
}
