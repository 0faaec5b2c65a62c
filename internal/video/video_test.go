package video

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallID(t *testing.T) {
	assert.Equal(t, "meeting_17", CallID(17))
}

func TestStreamProviderUserToken(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p := NewStreamProvider("key", "secret", time.Hour)
	p.now = func() time.Time { return fixed }

	raw, err := p.UserToken(5)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil },
		jwt.WithTimeFunc(func() time.Time { return fixed }))
	require.NoError(t, err)
	assert.Equal(t, "5", claims["user_id"])
	assert.EqualValues(t, fixed.Add(time.Hour).Unix(), claims["exp"])
	assert.Equal(t, "key", p.APIKey())
}

func TestStreamProviderNotConfigured(t *testing.T) {
	_, err := NewStreamProvider("", "", 0).UserToken(1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
