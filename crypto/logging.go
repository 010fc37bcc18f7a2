package crypto

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LoggerHelper builds logrus entries with a fixed set of fields for one
// function. It is shared by the packages of this module.
type LoggerHelper struct {
	function string
	pkg      string
	fields   logrus.Fields
}

// NewLogger creates a logger helper for a function of the crypto package.
func NewLogger(function string) *LoggerHelper {
	return NewPackageLogger("crypto", function)
}

// NewPackageLogger creates a logger helper tagged with pkg and function.
func NewPackageLogger(pkg, function string) *LoggerHelper {
	return &LoggerHelper{
		function: function,
		pkg:      pkg,
		fields: logrus.Fields{
			"function": function,
			"package":  pkg,
		},
	}
}

// WithField sets one field.
func (l *LoggerHelper) WithField(key string, value interface{}) *LoggerHelper {
	l.fields[key] = value
	return l
}

// WithFields merges fields into the helper.
func (l *LoggerHelper) WithFields(fields logrus.Fields) *LoggerHelper {
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}

// WithError records err and the step that produced it.
func (l *LoggerHelper) WithError(err error, operation string) *LoggerHelper {
	if err != nil {
		l.fields["error"] = err.Error()
	}
	l.fields["operation"] = operation
	return l
}

// Fields returns a copy of the accumulated fields.
func (l *LoggerHelper) Fields() logrus.Fields {
	out := make(logrus.Fields, len(l.fields))
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}

func (l *LoggerHelper) entry() *logrus.Entry {
	return logrus.WithFields(l.fields)
}

// Debug, Info, Warn and Error emit message at the matching level.
func (l *LoggerHelper) Debug(message string) { l.entry().Debug(message) }
func (l *LoggerHelper) Info(message string) { l.entry().Info(message) }
func (l *LoggerHelper) Warn(message string) { l.entry().Warn(message) }
func (l *LoggerHelper) Error(message string) { l.entry().Error(message) }

// SecureFieldHash creates a short preview of non-secret data for logging.
// Only the first 8 bytes are shown. Never pass key material or plaintext.
func SecureFieldHash(data []byte, name string) logrus.Fields {
	preview := "nil"
	if len(data) > 0 {
		previewLen := 8
		if len(data) < previewLen {
			previewLen = len(data)
		}
		preview = fmt.Sprintf("%x", data[:previewLen])
		if len(data) > previewLen {
			preview += "..."
		}
	}

	return logrus.Fields{
		name + "_preview": preview,
		name + "_size":    len(data),
	}
}
