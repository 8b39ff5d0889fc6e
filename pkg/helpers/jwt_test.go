package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	access, exp, err := m.GenerateAccessToken("scholar-1", "session-9")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "scholar-1", claims.ScholarID)
	assert.Equal(t, "session-9", claims.SessionID)
}

func TestJWTSecretsAreNotInterchangeable(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	refresh, _, err := m.GenerateRefreshToken("scholar-1", "session-9")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(refresh)
	assert.Error(t, err)

	_, err = m.ParseRefreshToken(refresh)
	assert.NoError(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	_, err := m.ParseAccessToken("not.a.token")
	assert.Error(t, err)
}
