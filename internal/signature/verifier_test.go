package signature

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func newTestPair(t *testing.T, alg string) (*Signer, *Verifier) {
	t.Helper()
	key := generateKey(t)

	signer, err := NewSigner(key, alg)
	require.NoError(t, err)

	verifier, err := NewVerifier(Config{PublicKey: &key.PublicKey, Algorithm: alg})
	require.NoError(t, err)

	return signer, verifier
}

func TestPayload(t *testing.T) {
	assert.Equal(t, "POST/register", Payload("POST", "/register"))
	assert.Equal(t, "GET/user/a@x.com", Payload("GET", "/user/a@x.com"))
}

func TestVerifier_Verify_RoundTrip(t *testing.T) {
	for _, alg := range []string{"", "RS256", "RS384", "RS512", "PS256"} {
		t.Run("alg="+alg, func(t *testing.T) {
			signer, verifier := newTestPair(t, alg)

			sig, err := signer.Sign("POST", "/register")
			require.NoError(t, err)

			res := verifier.Verify("POST", "/register", sig)
			assert.True(t, res.Verified)
			assert.Equal(t, ReasonOK, res.Reason)
			assert.NoError(t, res.Err)
			assert.Equal(t, "POST/register", res.Payload)
		})
	}
}

func TestVerifier_Verify_StdlibPKCS1v15(t *testing.T) {
	// Подпись, созданная напрямую через crypto/rsa, должна проходить проверку RS256
	key := generateKey(t)
	digest := sha256.Sum256([]byte("GET/user/a@x.com"))
	raw, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)

	verifier, err := NewVerifier(Config{PublicKey: &key.PublicKey})
	require.NoError(t, err)
	assert.Equal(t, DefaultAlgorithm, verifier.Algorithm())

	res := verifier.Verify("GET", "/user/a@x.com", base64.StdEncoding.EncodeToString(raw))
	assert.True(t, res.Verified)
}

func TestVerifier_Verify_Rejections(t *testing.T) {
	signer, verifier := newTestPair(t, DefaultAlgorithm)

	valid, err := signer.Sign("POST", "/login")
	require.NoError(t, err)

	otherSigner, _ := newTestPair(t, DefaultAlgorithm)
	foreign, err := otherSigner.Sign("POST", "/login")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(valid)
	require.NoError(t, err)
	raw[0] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name       string
		method     string
		path       string
		signature  string
		wantReason Reason
	}{
		{name: "other method", method: "GET", path: "/login", signature: valid, wantReason: ReasonMismatch},
		{name: "other path", method: "POST", path: "/register", signature: valid, wantReason: ReasonMismatch},
		{name: "path with query", method: "POST", path: "/login?x=1", signature: valid, wantReason: ReasonMismatch},
		{name: "signed by another key", method: "POST", path: "/login", signature: foreign, wantReason: ReasonMismatch},
		{name: "tampered bytes", method: "POST", path: "/login", signature: tampered, wantReason: ReasonMismatch},
		{name: "truncated", method: "POST", path: "/login", signature: base64.StdEncoding.EncodeToString(raw[:64]), wantReason: ReasonMismatch},
		{name: "not base64", method: "POST", path: "/login", signature: "%%%not-base64%%%", wantReason: ReasonMalformed},
		{name: "url-safe alphabet", method: "POST", path: "/login", signature: "ab-_", wantReason: ReasonMalformed},
		{name: "empty", method: "POST", path: "/login", signature: "", wantReason: ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := verifier.Verify(tt.method, tt.path, tt.signature)
			assert.False(t, res.Verified)
			assert.Equal(t, tt.wantReason, res.Reason)
			assert.Error(t, res.Err)
		})
	}
}

func TestVerifier_CannotBeShortCircuited(t *testing.T) {
	t.Run("nil key is rejected at construction", func(t *testing.T) {
		v, err := NewVerifier(Config{})
		assert.ErrorIs(t, err, ErrNoKey)
		assert.Nil(t, v)
	})

	t.Run("nil verifier never verifies", func(t *testing.T) {
		var v *Verifier
		res := v.Verify("POST", "/register", "anything")
		assert.False(t, res.Verified)
		assert.Equal(t, ReasonNoKey, res.Reason)
	})

	t.Run("zero verifier never verifies", func(t *testing.T) {
		res := (&Verifier{}).Verify("POST", "/register", "anything")
		assert.False(t, res.Verified)
		assert.Equal(t, ReasonNoKey, res.Reason)
	})

	t.Run("symmetric and none algorithms are refused", func(t *testing.T) {
		key := generateKey(t)
		for _, alg := range []string{"none", "HS256", "ES256", "EdDSA", "bogus"} {
			_, err := NewVerifier(Config{PublicKey: &key.PublicKey, Algorithm: alg})
			assert.ErrorIs(t, err, ErrUnsupportedAlgorithm, alg)
		}
	})
}

func TestNewSigner_Errors(t *testing.T) {
	_, err := NewSigner(nil, "")
	assert.ErrorIs(t, err, ErrNoKey)

	_, err = NewSigner(generateKey(t), "HS512")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "ok", ReasonOK.String())
	assert.Equal(t, "malformed", ReasonMalformed.String())
	assert.Equal(t, "mismatch", ReasonMismatch.String())
	assert.Equal(t, "no_key", ReasonNoKey.String())
	assert.Equal(t, "reason(42)", Reason(42).String())
}
