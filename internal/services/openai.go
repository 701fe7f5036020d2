package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
)

// ---------------------------------------------------------------------------
// OpenAI-compatible completion client
// Covers both OpenAI (gpt-5) and xAI (grok-3-mini); xAI exposes the same
// chat-completions surface under its own base URL.
// ---------------------------------------------------------------------------

const xaiBaseURL = "https://api.x.ai/v1"

// OpenAICompatService handles script completions via any OpenAI-compatible
// chat endpoint.
type OpenAICompatService struct {
	name   string // provider label for logs and errors
	client *openai.Client
}

// Ensure OpenAICompatService implements CompletionClient at compile time.
var _ CompletionClient = (*OpenAICompatService)(nil)

// NewOpenAIService creates a client for the OpenAI API.
func NewOpenAIService(apiKey string) *OpenAICompatService {
	return &OpenAICompatService{
		name:   "OpenAI",
		client: openai.NewClient(apiKey),
	}
}

// NewXAIService creates a client for the xAI API using its OpenAI-compatible
// endpoint.
func NewXAIService(apiKey string) *OpenAICompatService {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = xaiBaseURL
	return &OpenAICompatService{
		name:   "xAI",
		client: openai.NewClientWithConfig(cfg),
	}
}

// Complete runs a single chat completion. Implements CompletionClient.
// The recency window is ignored: neither backend supports time-boxed
// retrieval.
func (s *OpenAICompatService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	log.Printf("[%s] Requesting completion (model=%s, promptLen=%d, maxTokens=%d)", s.name, req.Model, len(req.Prompt), req.MaxTokens)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &errs.UpstreamError{Provider: s.name, Status: apiErr.HTTPStatusCode, Detail: fmt.Sprintf("%v", apiErr.Message)}
		}
		return "", &errs.UpstreamError{Provider: s.name, Detail: err.Error()}
	}

	if len(resp.Choices) == 0 {
		return "", &errs.UpstreamError{Provider: s.name, Detail: "no completion choices in response"}
	}

	return resp.Choices[0].Message.Content, nil
}
