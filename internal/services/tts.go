package services

import (
	"context"

	"github.com/rcdinesh/kidcastdailyapp/internal/models"
)

// ---------------------------------------------------------------------------
// TTSService — common interface for text-to-speech providers
// Both Google TTS and Amazon Polly implement this interface so the
// orchestrator can route between them without knowing the underlying
// provider.
// ---------------------------------------------------------------------------

// Provider hard input ceilings, in characters. The router keeps oversized
// scripts away from Google; each adapter re-checks its own ceiling before
// dispatch.
const (
	GoogleTTSMaxChars = 4950
	PollyMaxChars     = 100000
)

// SpeechResult is the common response type from any TTS provider.
type SpeechResult struct {
	AudioData []byte
	MIMEType  string
	DataURI   string // "data:<mime>;base64,<...>" for direct playback
}

// TTSService is the interface that any TTS provider must implement.
// A call is a single attempt; callers implement their own fallback.
type TTSService interface {
	// Synthesize converts text to audio using the given voice. Zero-value
	// fields in voice fall back to the provider default.
	Synthesize(ctx context.Context, text string, voice models.VoiceSpec) (*SpeechResult, error)

	// Provider identifies the backend for routing and provenance.
	Provider() models.TTSProvider

	// MaxChars is the provider's hard input ceiling.
	MaxChars() int
}
