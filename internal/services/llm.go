package services

import "context"

// ---------------------------------------------------------------------------
// CompletionClient — common interface for script completion providers
// Perplexity speaks its own dialect (time-boxed retrieval); xAI and OpenAI
// share one OpenAI-compatible client.
// ---------------------------------------------------------------------------

// RecencyWindow restricts retrieval-backed models to sources published
// inside the window. Bounds are unix seconds.
type RecencyWindow struct {
	After  int64
	Before int64
}

// CompletionRequest is the provider-neutral completion input.
type CompletionRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
	Recency     *RecencyWindow // nil for models without time-boxed retrieval
}

// CompletionClient is a single-attempt text completion capability.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
