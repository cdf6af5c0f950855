package answerer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/upagnaduba/ChatWithPdf/internal/config"
)

// OpenAIAnswerer talks to an OpenAI-compatible chat completion API
// (Groq, OpenAI, or any local server speaking the same protocol).
type OpenAIAnswerer struct {
	client *openai.Client
	model  string
}

var _ Answerer = (*OpenAIAnswerer)(nil)

// NewOpenAI creates an answering client from LLM settings. Outbound requests
// are traced and bounded by the configured timeout.
func NewOpenAI(cfg config.LLMConfig) *OpenAIAnswerer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
	}

	return &OpenAIAnswerer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Ask sends the prompt as a single user message and returns the answer text
// verbatim. Sampling temperature is pinned to (effectively) zero so the same
// prompt yields stable answers; the field is serialized with omitempty, so a
// literal zero would fall back to the server default.
func (a *OpenAIAnswerer) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyAnswer
	}
	answer := resp.Choices[0].Message.Content
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// classifyError wraps transport and API failures with ErrUpstream so callers
// can map them to a single gateway-style failure.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, ErrUpstream)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), ErrUpstream)
	}

	return fmt.Errorf("chat completion request failed: %v: %w", err, ErrUpstream)
}
