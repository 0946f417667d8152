package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	plain, digest, err := New()
	require.NoError(t, err)

	assert.Len(t, plain, 64)   // 32 байта в hex
	assert.Len(t, digest, 64)  // sha-256 в hex
	assert.NotEqual(t, plain, digest)
	assert.Equal(t, Digest(plain), digest)
}

func TestNew_Unique(t *testing.T) {
	first, _, err := New()
	require.NoError(t, err)
	second, _, err := New()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDigest_Deterministic(t *testing.T) {
	assert.Equal(t, Digest("abc"), Digest("abc"))
	assert.NotEqual(t, Digest("abc"), Digest("abd"))
}
