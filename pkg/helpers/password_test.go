package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPasswordWithCost("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CompareHashAndPassword(hash, "s3cret-pass"))
	assert.False(t, CompareHashAndPassword(hash, "other"))
}

func TestHashPasswordWithCost_OutOfRangeUsesDefault(t *testing.T) {
	hash, err := HashPasswordWithCost("pw", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestBcryptVerifier(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPasswordWithCost("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	var v BcryptVerifier

	ok, err := v.Verify(ctx, "correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(ctx, "battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = v.Verify(ctx, "anything", "not-a-hash")
	assert.Error(t, err)
}

func TestBcryptVerifier_PlaceholderNeverMatches(t *testing.T) {
	var v BcryptVerifier
	for _, pw := range []string{"", "password", "password123", PlaceholderHash} {
		ok, err := v.Verify(context.Background(), pw, PlaceholderHash)
		require.NoError(t, err, "placeholder must be a well-formed hash")
		assert.False(t, ok)
	}
}

func TestBcryptVerifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BcryptVerifier{}.Verify(ctx, "pw", PlaceholderHash)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPlaceholderHash_MatchesCostAndIsUnique(t *testing.T) {
	a, err := NewPlaceholderHash(bcrypt.MinCost + 1)
	require.NoError(t, err)
	b, err := NewPlaceholderHash(bcrypt.MinCost + 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	cost, err := bcrypt.Cost([]byte(a))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	ok, err := BcryptVerifier{}.Verify(context.Background(), "", a)
	require.NoError(t, err)
	assert.False(t, ok)
}
