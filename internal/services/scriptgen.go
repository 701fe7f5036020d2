package services

import (
	"context"
	"log"
	"time"

	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
	"github.com/rcdinesh/kidcastdailyapp/internal/models"
)

// ---------------------------------------------------------------------------
// Script generation service
// Routes completion requests to the client configured for the requested
// model. News scripts on the sonar model carry a recency window so the
// search-backed model only cites items from the last week.
// ---------------------------------------------------------------------------

const (
	completionTemperature = 0.7
	newsRecencyWindow     = 7 * 24 * time.Hour

	// Upper bound on one completion call so a dead provider never leaves
	// the session waiting forever.
	completionTimeout = 120 * time.Second
)

// ScriptService produces podcast scripts through whichever completion
// clients were configured at startup.
type ScriptService struct {
	clients map[models.ModelID]CompletionClient
	now     func() time.Time
}

// NewScriptService builds a service over the configured clients. Models
// without an entry in the map are treated as unconfigured at call time.
func NewScriptService(clients map[models.ModelID]CompletionClient) *ScriptService {
	return &ScriptService{
		clients: clients,
		now:     time.Now,
	}
}

// Generate runs the prompt through the client for the requested model and
// returns the raw completion text.
func (s *ScriptService) Generate(ctx context.Context, prompt string, model models.ModelID, maxTokens int, podcastType models.PodcastType) (string, error) {
	if !models.KnownModel(model) {
		return "", &errs.UnsupportedModelError{Model: string(model)}
	}
	client, ok := s.clients[model]
	if !ok || client == nil {
		return "", &errs.ConfigurationError{Msg: "no API key configured for model " + string(model)}
	}

	req := CompletionRequest{
		Prompt:      prompt,
		Model:       string(model),
		MaxTokens:   maxTokens,
		Temperature: completionTemperature,
	}
	if model == models.ModelSonar && podcastType == models.PodcastTypeNews {
		now := s.now()
		req.Recency = &RecencyWindow{
			After:  now.Add(-newsRecencyWindow).Unix(),
			Before: now.Unix(),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	log.Printf("[ScriptGen] generating script with model %s (max tokens %d)", model, maxTokens)
	text, err := client.Complete(ctx, req)
	if err != nil {
		log.Printf("[ScriptGen] completion failed for model %s: %v", model, err)
		return "", err
	}
	return text, nil
}
