// Package signature verifies and produces gateway request signatures.
//
// A gateway signature is an RSA signature over the string method+path
// (no separator, no query string, no body), transported as standard base64
// in the x-gateway-signature header.
package signature

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithm is RSASSA-PKCS1-v1_5 with SHA-256.
const DefaultAlgorithm = "RS256"

var (
	// ErrNoKey is returned when a verifier or signer is built without a key
	ErrNoKey = errors.New("signature key is not configured")

	// ErrUnsupportedAlgorithm is returned for non-RSA signing methods
	ErrUnsupportedAlgorithm = errors.New("unsupported signature algorithm")

	// ErrEmptySignature marks a request that carried an empty signature value
	ErrEmptySignature = errors.New("empty signature")
)

// Reason explains the outcome of a verification
type Reason int

const (
	// ReasonOK means the signature is valid
	ReasonOK Reason = iota
	// ReasonMalformed means the signature could not be decoded
	ReasonMalformed
	// ReasonMismatch means the signature does not match the payload and key
	ReasonMismatch
	// ReasonNoKey means the verifier has no key; nothing verifies
	ReasonNoKey
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonMalformed:
		return "malformed"
	case ReasonMismatch:
		return "mismatch"
	case ReasonNoKey:
		return "no_key"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Result is the outcome of Verify. Callers only branch on Verified;
// Reason and Err are for diagnostics.
type Result struct {
	Err      error
	Payload  string
	Reason   Reason
	Verified bool
}

// Config holds the key material for a Verifier
type Config struct {
	PublicKey *rsa.PublicKey
	Algorithm string // RS256 by default
}

// Verifier checks gateway signatures against a fixed public key.
// It is immutable after construction and safe for concurrent use.
type Verifier struct {
	key    *rsa.PublicKey
	method jwt.SigningMethod
}

// NewVerifier creates a verifier for the given key and algorithm
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.PublicKey == nil {
		return nil, ErrNoKey
	}

	method, err := rsaMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	return &Verifier{key: cfg.PublicKey, method: method}, nil
}

// Algorithm returns the configured signing method name
func (v *Verifier) Algorithm() string {
	return v.method.Alg()
}

// Payload builds the signed string for a request
func Payload(method, path string) string {
	return method + path
}

// Verify checks that signature is a base64 signature of method+path
func (v *Verifier) Verify(method, path, signature string) Result {
	payload := Payload(method, path)

	if v == nil || v.key == nil || v.method == nil {
		return Result{Payload: payload, Reason: ReasonNoKey, Err: ErrNoKey}
	}

	if signature == "" {
		return Result{Payload: payload, Reason: ReasonMalformed, Err: ErrEmptySignature}
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return Result{Payload: payload, Reason: ReasonMalformed, Err: fmt.Errorf("failed to decode signature: %w", err)}
	}

	if err := v.method.Verify(payload, sig, v.key); err != nil {
		return Result{Payload: payload, Reason: ReasonMismatch, Err: err}
	}

	return Result{Payload: payload, Reason: ReasonOK, Verified: true}
}

// rsaMethod resolves an algorithm name to an RSA (PKCS#1 v1.5 or PSS) method
func rsaMethod(alg string) (jwt.SigningMethod, error) {
	if alg == "" {
		alg = DefaultAlgorithm
	}

	method := jwt.GetSigningMethod(alg)
	switch method.(type) {
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		return method, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}
