package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("exp-1", "test-1/seating-exp-1.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	exportID, relPath, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", exportID)
	assert.Equal(t, "test-1/seating-exp-1.csv", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExpiry.Unix())
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, _, err := signer.Generate("exp-1", "a/b.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"0", false)
	require.Error(t, err)
}

func TestSignedURLRejectsWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	other := NewSignedURLSigner("different", time.Hour)

	token, _, err := signer.Generate("exp-1", "a/b.csv")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Nanosecond)

	token, _, err := signer.Generate("exp-1", "a/b.csv")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	// Cleanup paths still need to resolve expired tokens.
	exportID, relPath, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", exportID)
	assert.Equal(t, "a/b.csv", relPath)
}
