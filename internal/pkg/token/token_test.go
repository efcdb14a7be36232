package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	signed, expiresAt, err := m.Generate("user@example.com", false)
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Identity)
	assert.False(t, claims.IsAdmin)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m1 := NewManager("secret-one", time.Hour)
	m2 := NewManager("secret-two", time.Hour)

	signed, _, err := m1.Generate("user@example.com", true)
	require.NoError(t, err)

	_, err = m2.Parse(signed)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	signed, _, err := m.Generate("user@example.com", false)
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.Error(t, err)
}

func TestBlacklistInMemory(t *testing.T) {
	bl := NewBlacklist(nil)

	assert.False(t, bl.IsRevoked("tok"))

	bl.Revoke("tok", time.Now().Add(time.Hour))
	assert.True(t, bl.IsRevoked("tok"))

	// Already-expired tokens are not stored.
	bl.Revoke("stale", time.Now().Add(-time.Hour))
	assert.False(t, bl.IsRevoked("stale"))
}
