package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// OpenAIProvider talks to any OpenAI-compatible chat-completion endpoint
// (vLLM, llama.cpp, OpenAI itself) through LangChainGo.
type OpenAIProvider struct {
	model   llms.Model
	timeout time.Duration
}

func NewOpenAIProvider(baseURL, model, apiKey string, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		// langchaingo refuses an empty token even for keyless local endpoints
		apiKey = "unused"
	}

	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &OpenAIProvider{
		model:   client,
		timeout: timeout,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.model.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(schema.ChatMessageTypeHuman, userMessage),
		},
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(0),
	)
	if err != nil {
		return "", fmt.Errorf("llm call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
