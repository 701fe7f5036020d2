// Package orchestrator owns the podcast generation state machine: parameter
// snapshots, the script and audio artifacts derived from them, cascading
// invalidation when inputs change, and discard of results that arrive after
// the inputs that produced them are gone.
package orchestrator

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
	"github.com/rcdinesh/kidcastdailyapp/internal/models"
	"github.com/rcdinesh/kidcastdailyapp/internal/normalize"
	"github.com/rcdinesh/kidcastdailyapp/internal/services"
)

const (
	noticeScriptDiscarded = "Previous script discarded"
	noticeLongScript      = "Script exceeds the Google TTS limit; audio will use Amazon Polly"
	noticeProviderSwitch  = "Script too long for Google TTS; switched to Amazon Polly"
)

// ScriptGenerator produces raw script text for a prompt. Satisfied by
// services.ScriptService.
type ScriptGenerator interface {
	Generate(ctx context.Context, prompt string, model models.ModelID, maxTokens int, podcastType models.PodcastType) (string, error)
}

// Orchestrator drives one user's generation session. All methods are safe
// for concurrent use; the mutex is released while provider calls are in
// flight, and sequence counters decide whether a returning result still
// belongs to the current inputs.
type Orchestrator struct {
	mu sync.Mutex

	state  models.GenerationState
	params *models.GenerationParameters

	script    *models.ScriptArtifact
	edited    string // committed edit, effective over script.CleanedText
	isEdited  bool
	staged    string // in-progress edit buffer
	isEditing bool

	audio *models.AudioArtifact

	lastError string
	notice    string // one-time advisory, cleared on snapshot read

	// Monotonic per-kind generation counters. A result is applied only if
	// the counter still matches the value captured when the call started.
	scriptSeq uint64
	audioSeq  uint64

	scripts  ScriptGenerator
	adapters map[models.TTSProvider]services.TTSService
}

// New creates an idle orchestrator over the configured script generator and
// TTS adapters.
func New(scripts ScriptGenerator, adapters map[models.TTSProvider]services.TTSService) *Orchestrator {
	return &Orchestrator{
		state:    models.StateIdle,
		scripts:  scripts,
		adapters: adapters,
	}
}

// Snapshot is a point-in-time copy of the session for API responses. Reading
// one consumes the pending advisory notice.
type Snapshot struct {
	State           models.GenerationState       `json:"state"`
	Parameters      *models.GenerationParameters `json:"parameters,omitempty"`
	Script          *models.ScriptArtifact       `json:"script,omitempty"`
	ScriptLength    int                          `json:"script_length"`
	IsEdited        bool                         `json:"is_edited"`
	IsEditing       bool                         `json:"is_editing"`
	StagedText      string                       `json:"staged_text,omitempty"`
	Audio           *models.AudioArtifact        `json:"audio,omitempty"`
	DefaultProvider models.TTSProvider           `json:"default_provider"`
	Error           string                       `json:"error,omitempty"`
	Notice          string                       `json:"notice,omitempty"`
}

// Snapshot returns the current session view.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// AudioCreatedAt reports when the current audio artifact was built, and
// whether one exists. Unlike Snapshot it does not consume the pending notice,
// so callers can observe audio identity before and after an operation.
func (o *Orchestrator) AudioCreatedAt() (time.Time, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.audio == nil {
		return time.Time{}, false
	}
	return o.audio.CreatedAt, true
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     o.state,
		IsEdited:  o.isEdited,
		IsEditing: o.isEditing,
		Error:     o.lastError,
		Notice:    o.notice,
	}
	o.notice = ""

	if o.params != nil {
		p := *o.params
		snap.Parameters = &p
	}
	if o.script != nil {
		s := *o.script
		snap.Script = &s
	}
	if o.isEditing {
		snap.StagedText = o.staged
	}
	if o.audio != nil {
		a := *o.audio
		snap.Audio = &a
	}

	text := o.effectiveTextLocked()
	snap.ScriptLength = len(text)
	snap.DefaultProvider, _ = services.SelectProvider(len(text), "")
	return snap
}

// effectiveTextLocked is the text audio generation would consume right now:
// the committed edit when one exists, otherwise the cleaned script.
func (o *Orchestrator) effectiveTextLocked() string {
	if o.isEdited {
		return o.edited
	}
	if o.script != nil {
		return o.script.CleanedText
	}
	return ""
}

// SetParameters records the parameter set for the next generation. A set
// equal to the current one is a no-op; any difference resets every derived
// artifact back to idle.
func (o *Orchestrator) SetParameters(params models.GenerationParameters) Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.params != nil && o.params.Equal(params) {
		return o.snapshotLocked()
	}

	o.params = &params
	o.resetArtifactsLocked()
	o.state = models.StateIdle
	return o.snapshotLocked()
}

// Invalidate discards all derived artifacts, keeping the parameter set.
func (o *Orchestrator) Invalidate() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.resetArtifactsLocked()
	o.state = models.StateIdle
	return o.snapshotLocked()
}

// resetArtifactsLocked clears everything downstream of the parameters and
// bumps both sequence counters so in-flight results land dead.
func (o *Orchestrator) resetArtifactsLocked() {
	o.scriptSeq++
	o.audioSeq++
	o.script = nil
	o.edited = ""
	o.isEdited = false
	o.staged = ""
	o.isEditing = false
	o.audio = nil
	o.lastError = ""
	o.notice = ""
}

// GenerateScript runs a full script generation against the given parameter
// set and returns the resulting snapshot. The call blocks until the provider
// answers or fails; a concurrent restart makes this call's result a no-op.
func (o *Orchestrator) GenerateScript(ctx context.Context, params models.GenerationParameters) Snapshot {
	if err := params.Validate(); err != nil {
		// Invalid input never disturbs existing artifacts.
		o.mu.Lock()
		defer o.mu.Unlock()
		o.lastError = err.Error()
		return o.snapshotLocked()
	}

	o.mu.Lock()
	hadScript := o.script != nil
	o.params = &params
	o.resetArtifactsLocked()
	if hadScript {
		o.notice = noticeScriptDiscarded
	}
	o.state = models.StateScriptPending
	seq := o.scriptSeq
	o.mu.Unlock()

	prompt := services.BuildPrompt(params)
	raw, err := o.scripts.Generate(ctx, prompt, params.Model, params.MaxTokens, params.PodcastType)

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.scriptSeq {
		// The inputs this result was produced under are gone.
		log.Printf("[Orchestrator] Discarding stale script result (seq %d != %d)", seq, o.scriptSeq)
		return o.snapshotLocked()
	}

	if err != nil {
		o.state = models.StateScriptFailed
		o.lastError = err.Error()
		return o.snapshotLocked()
	}

	cleaned := normalize.Normalize(raw)
	if cleaned == "" {
		msg := "model returned an empty script"
		if strings.TrimSpace(raw) != "" {
			msg = "script cleaned down to nothing"
		}
		err := &errs.ValidationError{Msg: msg}
		o.state = models.StateScriptFailed
		o.lastError = err.Error()
		return o.snapshotLocked()
	}

	o.script = &models.ScriptArtifact{
		RawText:          raw,
		CleanedText:      cleaned,
		SourceParameters: params,
		CreatedAt:        time.Now(),
	}
	o.staged = cleaned
	o.state = models.StateScriptReady
	o.lastError = ""
	if len(cleaned) >= services.GoogleTTSMaxChars {
		o.notice = noticeLongScript
	}

	log.Printf("[Orchestrator] Script ready (%d chars cleaned)", len(cleaned))
	return o.snapshotLocked()
}

// GenerateAudio synthesizes the current effective text with the preferred
// provider, subject to the length-based routing override. The call blocks
// until synthesis completes; results for superseded text are dropped.
func (o *Orchestrator) GenerateAudio(ctx context.Context, preference models.TTSProvider) Snapshot {
	o.mu.Lock()

	if o.script == nil {
		o.lastError = (&errs.ValidationError{Msg: "no script to synthesize"}).Error()
		defer o.mu.Unlock()
		return o.snapshotLocked()
	}
	switch o.state {
	case models.StateScriptReady, models.StateAudioReady, models.StateAudioFailed:
	default:
		o.lastError = (&errs.ValidationError{Msg: "audio generation not allowed in state " + string(o.state)}).Error()
		defer o.mu.Unlock()
		return o.snapshotLocked()
	}

	text := o.effectiveTextLocked()
	provider, overridden := services.SelectProvider(len(text), preference)
	if overridden {
		o.notice = noticeProviderSwitch
	}

	adapter, ok := o.adapters[provider]
	if !ok {
		o.lastError = (&errs.ConfigurationError{Msg: "no TTS adapter configured for provider " + string(provider)}).Error()
		defer o.mu.Unlock()
		return o.snapshotLocked()
	}

	o.audioSeq++
	seq := o.audioSeq
	hash := models.ScriptHash(text)
	o.audio = nil
	o.state = models.StateAudioPending
	o.lastError = ""
	o.mu.Unlock()

	voice := models.DefaultVoice(provider)
	result, err := adapter.Synthesize(ctx, text, voice)

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.audioSeq || o.state != models.StateAudioPending {
		log.Printf("[Orchestrator] Discarding stale audio result (seq %d != %d)", seq, o.audioSeq)
		return o.snapshotLocked()
	}

	if err != nil {
		o.state = models.StateAudioFailed
		o.lastError = err.Error()
		return o.snapshotLocked()
	}
	if len(result.AudioData) == 0 {
		err := &errs.UpstreamError{Provider: string(provider), Detail: "empty audio payload"}
		o.state = models.StateAudioFailed
		o.lastError = err.Error()
		return o.snapshotLocked()
	}

	o.audio = &models.AudioArtifact{
		Bytes:            result.AudioData,
		DataURI:          result.DataURI,
		MIMEType:         result.MIMEType,
		Provider:         provider,
		SourceScriptHash: hash,
		CreatedAt:        time.Now(),
	}
	o.state = models.StateAudioReady
	o.lastError = ""

	log.Printf("[Orchestrator] Audio ready (%d bytes via %s)", len(result.AudioData), provider)
	return o.snapshotLocked()
}

// EditScript stages edited text without committing it. The committed script
// and any audio stay valid until SaveEdit.
func (o *Orchestrator) EditScript(text string) Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.script == nil {
		o.lastError = (&errs.ValidationError{Msg: "no script to edit"}).Error()
		return o.snapshotLocked()
	}

	o.staged = text
	o.isEditing = true
	return o.snapshotLocked()
}

// SaveEdit commits the staged text as the effective script. Existing audio
// was synthesized from the old text and is discarded.
func (o *Orchestrator) SaveEdit() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.script == nil || !o.isEditing {
		o.lastError = (&errs.ValidationError{Msg: "no staged edit to save"}).Error()
		return o.snapshotLocked()
	}
	if strings.TrimSpace(o.staged) == "" {
		o.lastError = (&errs.ValidationError{Msg: "edited script is empty"}).Error()
		return o.snapshotLocked()
	}

	o.edited = o.staged
	o.isEdited = true
	o.isEditing = false
	o.audio = nil
	o.audioSeq++
	o.state = models.StateScriptReady
	o.lastError = ""
	return o.snapshotLocked()
}

// CancelEdit abandons the staged text, restoring the committed effective
// script into the buffer.
func (o *Orchestrator) CancelEdit() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.staged = o.effectiveTextLocked()
	o.isEditing = false
	return o.snapshotLocked()
}
