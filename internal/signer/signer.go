// Package signer produces the short-lived bearer tokens the upstream API
// requires. Every token is bound to one exact (method, path) pair and expires
// within minutes, so a token minted for one endpoint can never be replayed
// against another.
package signer

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingCredential indicates the credential pair was absent or
	// malformed at startup. There is no fallback for this.
	ErrMissingCredential = errors.New("signer: missing or malformed credential")

	// ErrSigning indicates key material failed to produce a signature.
	ErrSigning = errors.New("signer: signing failed")
)

const tokenTTL = 2 * time.Minute

// Credential is the process-wide upstream API credential, loaded once at
// startup and never mutated.
type Credential struct {
	KeyID      string
	PrivateKey string // EC private key, PEM encoded
}

// Signer mints path-bound tokens from a fixed credential.
type Signer struct {
	keyID string
	key   *ecdsa.PrivateKey
	host  string
	now   func() time.Time
}

type claims struct {
	URIs []string `json:"uris"`
	jwt.RegisteredClaims
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// New validates the credential and returns a Signer. host is the upstream
// authority the tokens are scoped to (no scheme, no path).
func New(cred Credential, host string, opts ...Option) (*Signer, error) {
	if cred.KeyID == "" || cred.PrivateKey == "" {
		return nil, ErrMissingCredential
	}
	key, err := parsePrivateKey(cred.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredential, err)
	}
	s := &Signer{
		keyID: cred.KeyID,
		key:   key,
		host:  host,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign returns a fresh ES256 token authorizing exactly one (method, path)
// call. The path must be the path component only; query parameters are
// stripped by the upstream verifier before comparison, so signing them would
// guarantee a mismatch.
func (s *Signer) Sign(method, path string) (string, error) {
	if strings.ContainsAny(path, "?#") {
		return "", fmt.Errorf("%w: path %q must not carry query or fragment", ErrSigning, path)
	}
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: path %q must be absolute", ErrSigning, path)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims{
		URIs: []string{fmt.Sprintf("%s %s%s", method, s.host, path)},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cdp",
			Subject:   s.keyID,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	token.Header["kid"] = s.keyID
	token.Header["nonce"] = nonce()

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return signed, nil
}

// nonce returns a random hex string; the upstream rejects replayed headers.
func nonce() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func parsePrivateKey(pemStr string) (*ecdsa.PrivateKey, error) {
	// Keys delivered through env vars often arrive with escaped newlines.
	pemStr = strings.ReplaceAll(pemStr, `\n`, "\n")

	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not ECDSA")
	}
	return key, nil
}
