package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
)

// ---------------------------------------------------------------------------
// Generation parameters
// ---------------------------------------------------------------------------

type PodcastType string

const (
	PodcastTypeNews        PodcastType = "news"
	PodcastTypeExplanatory PodcastType = "explanatory"
	PodcastTypeTrivia      PodcastType = "trivia"
	PodcastTypeStory       PodcastType = "story"
)

type Audience string

const (
	AudienceKids    Audience = "kids"
	AudienceGeneral Audience = "general"
)

type ModelID string

const (
	ModelSonar ModelID = "sonar"       // Perplexity Sonar (supports time-boxed retrieval)
	ModelGrok  ModelID = "grok-3-mini" // xAI Grok 3 Mini
	ModelGPT5  ModelID = "gpt-5"       // OpenAI GPT-5
)

// KnownModel reports whether id is one of the supported script models.
func KnownModel(id ModelID) bool {
	switch id {
	case ModelSonar, ModelGrok, ModelGPT5:
		return true
	}
	return false
}

// GenerationParameters is the immutable input to a script generation.
// Equality over all fields drives cascading invalidation: a change to any
// field discards the script and audio artifacts produced under the old set.
type GenerationParameters struct {
	Topic       string      `json:"topic"`
	PodcastType PodcastType `json:"podcast_type"`
	Audience    Audience    `json:"audience"`
	Model       ModelID     `json:"model"`
	MaxTokens   int         `json:"max_tokens"`
}

// Equal reports whether two parameter sets match on every field.
func (p GenerationParameters) Equal(other GenerationParameters) bool {
	return p == other
}

// Validate checks the parameter set before any generation is attempted.
func (p GenerationParameters) Validate() error {
	if strings.TrimSpace(p.Topic) == "" {
		return &errs.ValidationError{Msg: "topic is required"}
	}
	switch p.PodcastType {
	case PodcastTypeNews, PodcastTypeExplanatory, PodcastTypeTrivia, PodcastTypeStory:
	default:
		return &errs.ValidationError{Msg: "unknown podcast type: " + string(p.PodcastType)}
	}
	switch p.Audience {
	case AudienceKids, AudienceGeneral:
	default:
		return &errs.ValidationError{Msg: "unknown audience: " + string(p.Audience)}
	}
	if !KnownModel(p.Model) {
		return &errs.UnsupportedModelError{Model: string(p.Model)}
	}
	if p.MaxTokens <= 0 {
		return &errs.ValidationError{Msg: "max_tokens must be positive"}
	}
	return nil
}

// ---------------------------------------------------------------------------
// TTS providers and voices
// ---------------------------------------------------------------------------

type TTSProvider string

const (
	TTSProviderGoogle TTSProvider = "google"
	TTSProviderAmazon TTSProvider = "amazon"
)

// VoiceSpec identifies a synthesis voice. Engine is only meaningful for
// providers that expose one (Polly's standard/neural/generative engines).
type VoiceSpec struct {
	LanguageCode string `json:"language_code"`
	VoiceName    string `json:"voice_name"`
	Engine       string `json:"engine,omitempty"`
}

// DefaultVoice returns the per-provider default voice.
func DefaultVoice(provider TTSProvider) VoiceSpec {
	switch provider {
	case TTSProviderAmazon:
		return VoiceSpec{LanguageCode: "en-US", VoiceName: "Danielle", Engine: "generative"}
	default:
		return VoiceSpec{LanguageCode: "en-US", VoiceName: "en-US-Chirp3-HD-Aoede"}
	}
}

// ---------------------------------------------------------------------------
// Artifacts
// ---------------------------------------------------------------------------

// ScriptArtifact is a generated script with its provenance. Owned exclusively
// by the orchestrator and replaced, never mutated, on each generation.
type ScriptArtifact struct {
	RawText          string               `json:"raw_text"`
	CleanedText      string               `json:"cleaned_text"`
	SourceParameters GenerationParameters `json:"source_parameters"`
	CreatedAt        time.Time            `json:"created_at"`
}

// AudioArtifact is synthesized audio bound to the exact text that produced
// it. It is valid only while SourceScriptHash matches the current effective
// script text.
type AudioArtifact struct {
	Bytes            []byte      `json:"-"`
	DataURI          string      `json:"data_uri"`
	MIMEType         string      `json:"mime_type"`
	Provider         TTSProvider `json:"provider"`
	SourceScriptHash string      `json:"source_script_hash"`
	CreatedAt        time.Time   `json:"created_at"`
}

// ScriptHash returns the identity of a script text, used to bind audio
// artifacts to the exact text they were synthesized from.
func ScriptHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ---------------------------------------------------------------------------
// Generation state machine
// ---------------------------------------------------------------------------

type GenerationState string

const (
	StateIdle          GenerationState = "idle"
	StateScriptPending GenerationState = "script_pending"
	StateScriptReady   GenerationState = "script_ready"
	StateScriptFailed  GenerationState = "script_failed"
	StateAudioPending  GenerationState = "audio_pending"
	StateAudioReady    GenerationState = "audio_ready"
	StateAudioFailed   GenerationState = "audio_failed"
)

// ---------------------------------------------------------------------------
// API request/response types
// ---------------------------------------------------------------------------

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type GenerateAudioRequest struct {
	Provider TTSProvider `json:"provider"`
}

type EditScriptRequest struct {
	Text string `json:"text"`
}

type PlaybackEventRequest struct {
	Event string `json:"event"`
}

type PlaybackStateResponse struct {
	State string `json:"state"`
}
