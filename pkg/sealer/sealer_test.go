package sealer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealOpen(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("123456789012", "profile-1")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "123456789012")

	opened, err := s.Open(sealed, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", opened)

	_, err = s.Open(sealed, "profile-2")
	assert.ErrorIs(t, err, ErrInvalidSealed)
}

func TestSealUsesFreshNonce(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)

	a, err := s.Seal("farmer@upi", "p")
	require.NoError(t, err)
	b, err := s.Seal("farmer@upi", "p")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := New("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = New(strings.Repeat("z", 64))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestOpenRejectsGarbage(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)
	_, err = s.Open("!!", "p")
	assert.ErrorIs(t, err, ErrInvalidSealed)
	_, err = s.Open("AAAA", "p")
	assert.ErrorIs(t, err, ErrInvalidSealed)
}

func TestLast4(t *testing.T) {
	assert.Equal(t, "9012", Last4("123456789012"))
	assert.Equal(t, "12", Last4(" 12 "))
}
