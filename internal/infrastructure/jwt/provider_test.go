package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/peachlease/edu-verify/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func TestSignVerify_RoundTrip(t *testing.T) {
	k := newKey(t)
	p := NewProviderFromKeys(k, &k.PublicKey, 30*time.Minute)

	tok, err := p.Sign("student@uga.edu")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "student@uga.edu", claims.Email)
	assert.Equal(t, "student@uga.edu", claims.Subject)
	assert.Equal(t, PurposeEmailVerification, claims.Purpose)
	assert.NotEmpty(t, claims.ID)
}

func TestVerify_Expired(t *testing.T) {
	k := newKey(t)
	p := NewProviderFromKeys(k, &k.PublicKey, time.Minute)
	issued := time.Now()
	p.now = func() time.Time { return issued }

	tok, err := p.Sign("student@uga.edu")
	require.NoError(t, err)

	p.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_WrongKey(t *testing.T) {
	k1, k2 := newKey(t), newKey(t)
	signer := NewProviderFromKeys(k1, &k1.PublicKey, time.Minute)
	verifier := NewProviderFromKeys(k2, &k2.PublicKey, time.Minute)

	tok, err := signer.Sign("student@uga.edu")
	require.NoError(t, err)
	_, err = verifier.Verify(tok)
	assert.Error(t, err)
}

// newTestKeyFiles writes a fresh RSA key pair as PEM files.
func newTestKeyFiles(t *testing.T) (string, string) {
	t.Helper()
	privKey := newKey(t)
	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))
	return privPath, pubPath
}

func TestNewProvider_FromPEMFiles(t *testing.T) {
	privPath, pubPath := newTestKeyFiles(t)
	p, err := NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		ProofTokenTTL:     time.Minute,
	})
	require.NoError(t, err)

	tok, err := p.Sign("a@uga.edu")
	require.NoError(t, err)
	_, err = p.Verify(tok)
	assert.NoError(t, err)
}

func TestNewProvider_MissingKeyFile(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTPrivateKeyPath: filepath.Join(t.TempDir(), "nope.pem")})
	assert.ErrorContains(t, err, "read private key")
}
