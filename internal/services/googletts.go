package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/rcdinesh/kidcastdailyapp/internal/credentials"
	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
	"github.com/rcdinesh/kidcastdailyapp/internal/models"
)

// ---------------------------------------------------------------------------
// Google Cloud Text-to-Speech Service
// Calls the REST synthesis endpoint directly with a self-signed service
// account JWT as the bearer credential. Voice: Chirp3 HD, LINEAR16 output.
// ---------------------------------------------------------------------------

const (
	googleTTSEndpoint   = "https://texttospeech.googleapis.com/v1/text:synthesize"
	googleTTSAudience   = "https://texttospeech.googleapis.com/"
	googleTTSMIMEType   = "audio/wav"
	googleTTSTimeout    = 60 * time.Second
	googleTokenValidity = time.Hour
)

// GoogleTTSService handles text-to-speech via the Google Cloud TTS API.
type GoogleTTSService struct {
	signer   *credentials.Signer
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// Ensure GoogleTTSService implements TTSService at compile time.
var _ TTSService = (*GoogleTTSService)(nil)

// NewGoogleTTSService creates a Google TTS service. A fresh bearer token is
// minted per synthesis call via the signer.
func NewGoogleTTSService(signer *credentials.Signer) *GoogleTTSService {
	return &GoogleTTSService{
		signer:   signer,
		endpoint: googleTTSEndpoint,
		timeout:  googleTTSTimeout,
		// The deadline lives on the request context, not the client, so a
		// timeout is distinguishable from other transport failures.
		client: &http.Client{},
	}
}

type googleTTSInput struct {
	Text string `json:"text"`
}

type googleTTSVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type googleTTSAudioConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

type googleTTSRequest struct {
	Input       googleTTSInput       `json:"input"`
	Voice       googleTTSVoice       `json:"voice"`
	AudioConfig googleTTSAudioConfig `json:"audioConfig"`
}

type googleTTSResponse struct {
	AudioContent string `json:"audioContent"`
}

func (s *GoogleTTSService) Provider() models.TTSProvider { return models.TTSProviderGoogle }

func (s *GoogleTTSService) MaxChars() int { return GoogleTTSMaxChars }

// Synthesize converts text to speech. Implements the TTSService interface.
// Text at or above the provider ceiling fails before any network dispatch.
func (s *GoogleTTSService) Synthesize(ctx context.Context, text string, voice models.VoiceSpec) (*SpeechResult, error) {
	if len(text) >= GoogleTTSMaxChars {
		return nil, &errs.LimitExceededError{Provider: "Google TTS", Length: len(text), Limit: GoogleTTSMaxChars}
	}

	def := models.DefaultVoice(models.TTSProviderGoogle)
	if voice.LanguageCode == "" {
		voice.LanguageCode = def.LanguageCode
	}
	if voice.VoiceName == "" {
		voice.VoiceName = def.VoiceName
	}

	token, err := s.signer.SignToken(googleTTSAudience, googleTokenValidity)
	if err != nil {
		return nil, err
	}

	reqBody := googleTTSRequest{
		Input:       googleTTSInput{Text: text},
		Voice:       googleTTSVoice{LanguageCode: voice.LanguageCode, Name: voice.VoiceName},
		AudioConfig: googleTTSAudioConfig{AudioEncoding: "LINEAR16"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Google TTS request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google TTS request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[GoogleTTS] Synthesizing speech (voice=%s, textLen=%d)", voice.VoiceName, len(text))

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &errs.TimeoutError{Provider: "Google TTS", After: s.timeout}
		}
		return nil, fmt.Errorf("Google TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &errs.UpstreamError{Provider: "Google TTS", Status: resp.StatusCode, Detail: string(body)}
	}

	var result googleTTSResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &errs.TimeoutError{Provider: "Google TTS", After: s.timeout}
		}
		return nil, &errs.UpstreamError{Provider: "Google TTS", Detail: fmt.Sprintf("malformed response: %v", err)}
	}

	if result.AudioContent == "" {
		return nil, &errs.UpstreamError{Provider: "Google TTS", Detail: "no audio content in response"}
	}

	audioData, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, &errs.UpstreamError{Provider: "Google TTS", Detail: fmt.Sprintf("invalid base64 audio: %v", err)}
	}

	log.Printf("[GoogleTTS] Speech synthesized (%d bytes)", len(audioData))

	return &SpeechResult{
		AudioData: audioData,
		MIMEType:  googleTTSMIMEType,
		DataURI:   "data:" + googleTTSMIMEType + ";base64," + result.AudioContent,
	}, nil
}
