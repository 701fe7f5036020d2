// Package credentials mints short-lived service-account tokens for cloud
// APIs that accept a self-signed JWT as a bearer credential.
package credentials

import (
	"crypto/rsa"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rcdinesh/kidcastdailyapp/internal/errs"
)

// Signer produces RS256-signed assertions for a single service account.
// The key and identity are process-wide, read-only configuration; Signer is
// safe for concurrent use.
type Signer struct {
	clientEmail string
	key         *rsa.PrivateKey
}

// NewSigner parses the PEM private key up front so a malformed key fails at
// startup, not on the first synthesis call.
func NewSigner(clientEmail, privateKeyPEM string) (*Signer, error) {
	if clientEmail == "" {
		return nil, &errs.CredentialError{Msg: "client email is empty"}
	}

	// Keys pasted from service-account JSON carry literal \n escapes.
	pemData := strings.ReplaceAll(privateKeyPEM, `\n`, "\n")

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemData))
	if err != nil {
		return nil, &errs.CredentialError{Msg: "parse private key", Err: err}
	}

	return &Signer{clientEmail: clientEmail, key: key}, nil
}

// SignToken mints a fresh assertion for the given audience with the standard
// claims (iss, sub, aud, iat, exp). Tokens are minted per call; nothing is
// cached.
func (s *Signer) SignToken(audience string, validity time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.clientEmail,
		Subject:   s.clientEmail,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", &errs.CredentialError{Msg: "sign token", Err: err}
	}
	return signed, nil
}
