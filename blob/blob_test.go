package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	valid := []string{
		"0123456789abcdef0123456789abcdef",
		"0123456789abcdef0123456789abcdeF",
	}
	for _, s := range valid {
		_, err := ParseID(s)
		assert.NoError(t, err, s)
	}

	invalid := []string{
		"0123456789abcdef0123456789abcde",
		"0123456789abcdef0123456789abcdef\n",
		"0123456789abcdef0123456789abcdeg",
		"",
		"0123456789abcdef0123456789abcdef00",
	}
	for _, s := range invalid {
		_, err := ParseID(s)
		assert.ErrorIs(t, err, ErrInvalidBlobID, "%q", s)
	}

	id, err := ParseID("000102030405060708090a0b0c0d0eff")
	require.NoError(t, err)
	assert.Equal(t, ID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0xa, 0xb, 0xc, 0xd, 0xe, 0xff}, id)
	assert.Equal(t, "000102030405060708090a0b0c0d0eff", id.String())
}

func TestIDIsZero(t *testing.T) {
	assert.True(t, ID{}.IsZero())
	assert.False(t, ID{1}.IsZero())
}

func TestReferenceWipe(t *testing.T) {
	ref := Reference{Key: [32]byte{1, 2, 3}}
	ref.Wipe()
	assert.Equal(t, [32]byte{}, [32]byte(ref.Key))
}
