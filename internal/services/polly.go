package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"

	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
	"github.com/rcdinesh/kidcastdailyapp/internal/models"
)

// ---------------------------------------------------------------------------
// Amazon Polly Text-to-Speech Service
// Uses the AWS SDK to synthesize speech with the Danielle generative voice.
// Output is MP3, and the input ceiling is far above Google's, which makes
// Polly the fallback for long scripts.
// ---------------------------------------------------------------------------

const pollyMIMEType = "audio/mpeg"

// pollyAPI is the slice of the Polly client the service uses; tests swap in
// a fake.
type pollyAPI interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyService handles text-to-speech via Amazon Polly.
type PollyService struct {
	client pollyAPI
}

// Ensure PollyService implements TTSService at compile time.
var _ TTSService = (*PollyService)(nil)

// NewPollyService creates a Polly service with static credentials from
// configuration. Unlike Google TTS there is no self-signed token step; the
// SDK signs each request with the access credential.
func NewPollyService(ctx context.Context, region, accessKeyID, secretAccessKey string) (*PollyService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &PollyService{client: polly.NewFromConfig(cfg)}, nil
}

func newPollyServiceWithClient(client pollyAPI) *PollyService {
	return &PollyService{client: client}
}

func (s *PollyService) Provider() models.TTSProvider { return models.TTSProviderAmazon }

func (s *PollyService) MaxChars() int { return PollyMaxChars }

// Synthesize converts text to speech. Implements the TTSService interface.
func (s *PollyService) Synthesize(ctx context.Context, text string, voice models.VoiceSpec) (*SpeechResult, error) {
	if len(text) >= PollyMaxChars {
		return nil, &errs.LimitExceededError{Provider: "Amazon Polly", Length: len(text), Limit: PollyMaxChars}
	}

	def := models.DefaultVoice(models.TTSProviderAmazon)
	if voice.VoiceName == "" {
		voice.VoiceName = def.VoiceName
	}
	if voice.Engine == "" {
		voice.Engine = def.Engine
	}
	if voice.LanguageCode == "" {
		voice.LanguageCode = def.LanguageCode
	}

	log.Printf("[Polly] Synthesizing speech (voice=%s, engine=%s, textLen=%d)", voice.VoiceName, voice.Engine, len(text))

	out, err := s.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      pollytypes.VoiceId(voice.VoiceName),
		Engine:       pollytypes.Engine(voice.Engine),
		LanguageCode: pollytypes.LanguageCode(voice.LanguageCode),
		OutputFormat: pollytypes.OutputFormatMp3,
	})
	if err != nil {
		return nil, &errs.UpstreamError{Provider: "Amazon Polly", Detail: err.Error()}
	}
	if out.AudioStream == nil {
		return nil, &errs.UpstreamError{Provider: "Amazon Polly", Detail: "no audio stream in response"}
	}
	defer out.AudioStream.Close()

	audioData, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read Polly audio stream: %w", err)
	}

	if len(audioData) == 0 {
		return nil, &errs.UpstreamError{Provider: "Amazon Polly", Detail: "empty audio stream in response"}
	}

	mimeType := pollyMIMEType
	if ct := aws.ToString(out.ContentType); ct != "" {
		mimeType = ct
	}

	log.Printf("[Polly] Speech synthesized (%d bytes, %s)", len(audioData), mimeType)

	return &SpeechResult{
		AudioData: audioData,
		MIMEType:  mimeType,
		DataURI:   "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(audioData),
	}, nil
}
