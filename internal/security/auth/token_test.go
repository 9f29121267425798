package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenKey(t *testing.T) {
	k1, err := NewTokenKey()
	require.NoError(t, err)
	k2, err := NewTokenKey()
	require.NoError(t, err)

	assert.Len(t, k1, 64)
	assert.NotEqual(t, k1, k2)
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	for _, header := range []string{"", "abc123", "Bearer", "Bearer ", "Basic abc123", "Bearer a b"} {
		_, err := ExtractToken(header)
		assert.Error(t, err, "header %q should be rejected", header)
	}
}
