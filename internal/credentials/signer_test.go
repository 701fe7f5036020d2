package credentials

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
)

const testEmail = "tts-robot@example-project.iam.gserviceaccount.com"

func testKeyPEM(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	block := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	return key, string(block)
}

func TestSignTokenClaims(t *testing.T) {
	key, pemStr := testKeyPEM(t)

	signer, err := NewSigner(testEmail, pemStr)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	const audience = "https://texttospeech.googleapis.com/"
	signed, err := signer.SignToken(audience, time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return &key.PublicKey, nil
	})
	if err != nil {
		t.Fatalf("parse signed token: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token did not verify")
	}

	if claims.Issuer != testEmail {
		t.Errorf("iss = %q, want %q", claims.Issuer, testEmail)
	}
	if claims.Subject != testEmail {
		t.Errorf("sub = %q, want %q", claims.Subject, testEmail)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != audience {
		t.Errorf("aud = %v, want [%q]", claims.Audience, audience)
	}

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != time.Hour {
		t.Errorf("token lifetime = %s, want 1h", lifetime)
	}
}

func TestSignTokenFreshPerCall(t *testing.T) {
	_, pemStr := testKeyPEM(t)
	signer, err := NewSigner(testEmail, pemStr)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	a, err := signer.SignToken("aud", time.Hour)
	if err != nil {
		t.Fatalf("first SignToken: %v", err)
	}
	time.Sleep(1100 * time.Millisecond) // iat has second granularity
	b, err := signer.SignToken("aud", time.Hour)
	if err != nil {
		t.Fatalf("second SignToken: %v", err)
	}
	if a == b {
		t.Error("expected a freshly minted token per call")
	}
}

func TestNewSignerEscapedNewlines(t *testing.T) {
	_, pemStr := testKeyPEM(t)

	// Simulate a key pasted from service-account JSON.
	escaped := ""
	for _, r := range pemStr {
		if r == '\n' {
			escaped += `\n`
		} else {
			escaped += string(r)
		}
	}

	if _, err := NewSigner(testEmail, escaped); err != nil {
		t.Fatalf("NewSigner should accept \\n-escaped keys: %v", err)
	}
}

func TestNewSignerBadKey(t *testing.T) {
	var cerr *errs.CredentialError

	if _, err := NewSigner(testEmail, "not a pem key"); !errors.As(err, &cerr) {
		t.Errorf("malformed key: expected CredentialError, got %v", err)
	}
	if _, err := NewSigner("", "whatever"); !errors.As(err, &cerr) {
		t.Errorf("empty email: expected CredentialError, got %v", err)
	}
}
