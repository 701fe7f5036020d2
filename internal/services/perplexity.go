package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
)

// ---------------------------------------------------------------------------
// Perplexity Sonar completion client
// Called over raw HTTP because the retrieval window fields (created_after /
// created_before) are Perplexity-specific and sit outside the standard
// chat-completions schema.
// ---------------------------------------------------------------------------

const perplexityBaseURL = "https://api.perplexity.ai"

// PerplexityService handles script completions via the Perplexity API.
type PerplexityService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Ensure PerplexityService implements CompletionClient at compile time.
var _ CompletionClient = (*PerplexityService)(nil)

func NewPerplexityService(apiKey string) *PerplexityService {
	return &PerplexityService{
		apiKey:  apiKey,
		baseURL: perplexityBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float32             `json:"temperature"`

	// Retrieval window, unix seconds. Omitted unless the caller set one.
	CreatedAfter  int64 `json:"created_after,omitempty"`
	CreatedBefore int64 `json:"created_before,omitempty"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs a single completion. Implements CompletionClient.
func (s *PerplexityService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	body := perplexityRequest{
		Model:       req.Model,
		Messages:    []perplexityMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.Recency != nil {
		body.CreatedAfter = req.Recency.After
		body.CreatedBefore = req.Recency.Before
		log.Printf("[Perplexity] Applying retrieval window: after=%d before=%d", body.CreatedAfter, body.CreatedBefore)
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal Perplexity request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create Perplexity request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	log.Printf("[Perplexity] Requesting completion (model=%s, promptLen=%d, maxTokens=%d)", req.Model, len(req.Prompt), req.MaxTokens)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Perplexity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &errs.UpstreamError{Provider: "Perplexity", Status: resp.StatusCode, Detail: string(respBody)}
	}

	var result perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &errs.UpstreamError{Provider: "Perplexity", Detail: fmt.Sprintf("malformed response: %v", err)}
	}

	if len(result.Choices) == 0 {
		return "", &errs.UpstreamError{Provider: "Perplexity", Detail: "no completion choices in response"}
	}

	return result.Choices[0].Message.Content, nil
}
