package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentity(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"regular identity", "ECHOECHO", false},
		{"digits", "ABCD1234", false},
		{"gateway identity", "*TESTGW1", false},
		{"too short", "ECHO", true},
		{"too long", "ECHOECHO1", true},
		{"lowercase", "echoecho", true},
		{"star not first", "ECHO*CHO", true},
		{"space", "ECHO CHO", true},
		{"empty", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseIdentity(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIdentity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.input, id.String())
		})
	}
}

func TestIdentityIsGateway(t *testing.T) {
	assert.True(t, MustParseIdentity("*TESTGW1").IsGateway())
	assert.False(t, MustParseIdentity("ECHOECHO").IsGateway())
	assert.Panics(t, func() { MustParseIdentity("bad") })
}
