package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCredentials(t *testing.T) {
	creds, err := parseCredentials(nil)
	require.NoError(t, err)
	assert.Nil(t, creds)

	creds, err = parseCredentials([]string{"*TESTGW1:secret", "ECHOECHO:a:b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"*TESTGW1": "secret", "ECHOECHO": "a:b"}, creds)

	for _, bad := range []string{"*TESTGW1", "*TESTGW1:", "short:x"} {
		_, err := parseCredentials([]string{bad})
		assert.Error(t, err, bad)
	}
}
