package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Sessions
	SessionTTLMinutes    int
	SweepIntervalMinutes int

	// Perplexity (sonar — news scripts with time-boxed retrieval)
	PerplexityKey string

	// xAI (grok-3-mini)
	XAIKey string

	// OpenAI (gpt-5)
	OpenAIKey string

	// Google Cloud TTS (service account, self-signed JWT auth)
	GoogleTTSClientEmail string
	GoogleTTSPrivateKey  string

	// Amazon Polly
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:              getEnv("API_PORT", "8080"),
		BackendAPIKey:        getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", ""),
		SessionTTLMinutes:    getEnvInt("SESSION_TTL_MINUTES", 60),
		SweepIntervalMinutes: getEnvInt("SESSION_SWEEP_INTERVAL_MINUTES", 5),
		PerplexityKey:        getEnv("PERPLEXITY_API_KEY", ""),
		XAIKey:               getEnv("XAI_API_KEY", ""),
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		GoogleTTSClientEmail: getEnv("GOOGLE_TTS_CLIENT_EMAIL", ""),
		GoogleTTSPrivateKey:  getEnv("GOOGLE_TTS_PRIVATE_KEY", ""),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// At least one script model must be usable
	if cfg.PerplexityKey == "" && cfg.XAIKey == "" && cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("at least one of PERPLEXITY_API_KEY, XAI_API_KEY or OPENAI_API_KEY is required")
	}

	// At least one TTS provider must be configured
	if !cfg.HasGoogleTTS() && !cfg.HasPolly() {
		return nil, fmt.Errorf("either GOOGLE_TTS_CLIENT_EMAIL/GOOGLE_TTS_PRIVATE_KEY or AWS credentials are required for TTS")
	}

	// A half-configured credential pair is a mistake, not an absence
	if (cfg.GoogleTTSClientEmail == "") != (cfg.GoogleTTSPrivateKey == "") {
		return nil, fmt.Errorf("GOOGLE_TTS_CLIENT_EMAIL and GOOGLE_TTS_PRIVATE_KEY must be set together")
	}
	if (cfg.AWSAccessKeyID == "") != (cfg.AWSSecretAccessKey == "") {
		return nil, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}

	return cfg, nil
}

// HasGoogleTTS reports whether the Google TTS credential pair is complete.
func (c *Config) HasGoogleTTS() bool {
	return c.GoogleTTSClientEmail != "" && c.GoogleTTSPrivateKey != ""
}

// HasPolly reports whether the AWS credential set is complete.
func (c *Config) HasPolly() bool {
	return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
