package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(CodeLength)
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)
	for _, ch := range code {
		assert.GreaterOrEqual(t, ch, '0')
		assert.LessOrEqual(t, ch, '9')
	}
}

func TestGenerateCodeSpread(t *testing.T) {
	// Not a uniformity proof, just a sanity check that we are not minting
	// the same value over and over.
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateCode(CodeLength)
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestSHA256HexStable(t *testing.T) {
	assert.Equal(t, SHA256Hex("token"), SHA256Hex("token"))
	assert.NotEqual(t, SHA256Hex("token"), SHA256Hex("token2"))
	assert.Len(t, SHA256Hex("token"), 64)
}
