// Package errs defines the typed error taxonomy shared by the generation
// pipeline. Every provider call and orchestrator transition reports one of
// these so callers can distinguish "fix your config" from "try again".
package errs

import (
	"fmt"
	"time"
)

// ConfigurationError indicates a required secret or setting is missing or
// invalid. Fatal for the session; not retryable.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// UnsupportedModelError indicates an unknown model identifier. The user must
// change their selection.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model: %q", e.Model)
}

// ValidationError indicates bad user input (empty topic, or a script that
// cleaned down to nothing).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Msg
}

// UpstreamError indicates a non-success or malformed response from an LLM or
// TTS provider. Retryable by user action only.
type UpstreamError struct {
	Provider string
	Status   int
	Detail   string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Detail)
}

// LimitExceededError indicates text over a provider's hard character
// ceiling. Raised before any network dispatch.
type LimitExceededError struct {
	Provider string
	Length   int
	Limit    int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s cannot process %d characters (limit %d)", e.Provider, e.Length, e.Limit)
}

// TimeoutError indicates a synthesis call exceeded its client-side deadline
// and was aborted.
type TimeoutError struct {
	Provider string
	After    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out after %s", e.Provider, e.After)
}

// CredentialError indicates token signing failed. The key will not change
// within a session, so this is fatal for the call.
type CredentialError struct {
	Msg string
	Err error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential error: %s: %v", e.Msg, e.Err)
	}
	return "credential error: " + e.Msg
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}
