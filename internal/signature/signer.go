package signature

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer produces gateway signatures with a private key
type Signer struct {
	key    *rsa.PrivateKey
	method jwt.SigningMethod
}

// NewSigner creates a signer; algorithm defaults to RS256
func NewSigner(key *rsa.PrivateKey, algorithm string) (*Signer, error) {
	if key == nil {
		return nil, ErrNoKey
	}

	method, err := rsaMethod(algorithm)
	if err != nil {
		return nil, err
	}

	return &Signer{key: key, method: method}, nil
}

// Sign returns the base64 signature of method+path
func (s *Signer) Sign(method, path string) (string, error) {
	sig, err := s.method.Sign(Payload(method, path), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}
