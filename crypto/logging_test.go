package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger("Seal")
	assert.Equal(t, "Seal", logger.fields["function"])
	assert.Equal(t, "crypto", logger.fields["package"])

	other := NewPackageLogger("blob", "Prepare")
	assert.Equal(t, "blob", other.pkg)
	assert.Equal(t, "Prepare", other.function)
}

func TestLoggerHelperFields(t *testing.T) {
	logger := NewLogger("Open").
		WithField("box_size", 42).
		WithFields(logrus.Fields{"a": 1, "b": "two"}).
		WithError(errors.New("boom"), "open")

	fields := logger.Fields()
	assert.Equal(t, 42, fields["box_size"])
	assert.Equal(t, 1, fields["a"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "open", fields["operation"])

	fields["a"] = 99
	assert.Equal(t, 1, logger.fields["a"], "Fields must return a copy")
}

func TestLoggerHelperOutput(t *testing.T) {
	var buf bytes.Buffer
	original := logrus.StandardLogger().Out
	originalLevel := logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetLevel(logrus.DebugLevel)
	defer func() {
		logrus.SetOutput(original)
		logrus.SetLevel(originalLevel)
	}()

	NewLogger("Seal").WithField("box_size", 7).Debug("Sealed box")
	out := buf.String()
	assert.Contains(t, out, "Sealed box")
	assert.Contains(t, out, "box_size=7")
	assert.Contains(t, out, "function=Seal")
}

func TestSecureFieldHash(t *testing.T) {
	fields := SecureFieldHash([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}, "nonce")
	assert.Equal(t, "0102030405060708...", fields["nonce_preview"])
	assert.Equal(t, 9, fields["nonce_size"])

	empty := SecureFieldHash(nil, "box")
	assert.Equal(t, "nil", empty["box_preview"])
	assert.Equal(t, 0, empty["box_size"])

	short := SecureFieldHash([]byte{0xff}, "id")
	assert.Equal(t, "ff", short["id_preview"])
}
