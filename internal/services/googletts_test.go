package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rcdinesh/kidcastdailyapp/internal/credentials"
	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
	"github.com/rcdinesh/kidcastdailyapp/internal/models"
)

func newTestSigner(t *testing.T) *credentials.Signer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal test key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	signer, err := credentials.NewSigner("tts@test-project.iam.gserviceaccount.com", string(pemBytes))
	if err != nil {
		t.Fatalf("failed to create test signer: %v", err)
	}
	return signer
}

func newTestGoogleTTS(signer *credentials.Signer, endpoint string) *GoogleTTSService {
	svc := NewGoogleTTSService(signer)
	svc.endpoint = endpoint
	return svc
}

func TestGoogleTTSSynthesize(t *testing.T) {
	signer := newTestSigner(t)
	audio := []byte("RIFF....WAVEfmt fake-pcm-payload")

	var gotBody googleTTSRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(googleTTSResponse{
			AudioContent: base64.StdEncoding.EncodeToString(audio),
		})
	}))
	defer server.Close()

	svc := newTestGoogleTTS(signer, server.URL)
	result, err := svc.Synthesize(context.Background(), "Hello from the test.", models.VoiceSpec{})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if string(result.AudioData) != string(audio) {
		t.Errorf("AudioData = %q, want %q", result.AudioData, audio)
	}
	if result.MIMEType != "audio/wav" {
		t.Errorf("MIMEType = %q, want audio/wav", result.MIMEType)
	}
	if !strings.HasPrefix(result.DataURI, "data:audio/wav;base64,") {
		t.Errorf("DataURI = %q, want data:audio/wav;base64 prefix", result.DataURI)
	}

	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Errorf("Authorization = %q, want Bearer token", gotAuth)
	}
	if gotBody.Input.Text != "Hello from the test." {
		t.Errorf("request text = %q", gotBody.Input.Text)
	}
	if gotBody.AudioConfig.AudioEncoding != "LINEAR16" {
		t.Errorf("audioEncoding = %q, want LINEAR16", gotBody.AudioConfig.AudioEncoding)
	}
	// Default voice should have been filled in.
	if gotBody.Voice.Name != "en-US-Chirp3-HD-Aoede" || gotBody.Voice.LanguageCode != "en-US" {
		t.Errorf("voice = %+v, want default Chirp3 HD voice", gotBody.Voice)
	}
}

func TestGoogleTTSCeilingBlocksBeforeNetwork(t *testing.T) {
	signer := newTestSigner(t)

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		json.NewEncoder(w).Encode(googleTTSResponse{AudioContent: base64.StdEncoding.EncodeToString([]byte("x"))})
	}))
	defer server.Close()

	svc := newTestGoogleTTS(signer, server.URL)
	longText := strings.Repeat("a", GoogleTTSMaxChars)

	_, err := svc.Synthesize(context.Background(), longText, models.VoiceSpec{})
	var limitErr *errs.LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("err = %v, want LimitExceededError", err)
	}
	if limitErr.Length != GoogleTTSMaxChars || limitErr.Limit != GoogleTTSMaxChars {
		t.Errorf("limit error = %+v, want length and limit %d", limitErr, GoogleTTSMaxChars)
	}
	if n := atomic.LoadInt64(&calls); n != 0 {
		t.Errorf("server received %d calls, want 0", n)
	}

	// Just below the ceiling passes the guard and reaches the server.
	okText := strings.Repeat("a", GoogleTTSMaxChars-1)
	if _, err := svc.Synthesize(context.Background(), okText, models.VoiceSpec{}); err != nil {
		t.Fatalf("Synthesize below ceiling failed: %v", err)
	}
	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Errorf("server received %d calls, want 1", n)
	}
}

func TestGoogleTTSUpstreamError(t *testing.T) {
	signer := newTestSigner(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := newTestGoogleTTS(signer, server.URL)
	_, err := svc.Synthesize(context.Background(), "short text", models.VoiceSpec{})

	var upErr *errs.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upErr.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want %d", upErr.Status, http.StatusTooManyRequests)
	}
	if !strings.Contains(upErr.Detail, "quota exceeded") {
		t.Errorf("Detail = %q, want upstream body preserved", upErr.Detail)
	}
}

func TestGoogleTTSEmptyAudioContent(t *testing.T) {
	signer := newTestSigner(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(googleTTSResponse{})
	}))
	defer server.Close()

	svc := newTestGoogleTTS(signer, server.URL)
	_, err := svc.Synthesize(context.Background(), "short text", models.VoiceSpec{})

	var upErr *errs.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want UpstreamError for empty audio content", err)
	}
}

func TestGoogleTTSTimeout(t *testing.T) {
	signer := newTestSigner(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	svc := newTestGoogleTTS(signer, server.URL)
	svc.timeout = 50 * time.Millisecond

	_, err := svc.Synthesize(context.Background(), "short text", models.VoiceSpec{})
	var toErr *errs.TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if toErr.After != 50*time.Millisecond {
		t.Errorf("After = %v, want 50ms", toErr.After)
	}
}

func TestGoogleTTSTimeoutDuringBody(t *testing.T) {
	signer := newTestSigner(t)
	// Headers arrive promptly, then the body stalls past the deadline. The
	// deadline should still surface as a timeout, not a decode failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	svc := newTestGoogleTTS(signer, server.URL)
	svc.timeout = 50 * time.Millisecond

	_, err := svc.Synthesize(context.Background(), "short text", models.VoiceSpec{})
	var toErr *errs.TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
}
