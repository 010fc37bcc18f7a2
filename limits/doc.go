// Package limits provides centralized size constants and validation functions
// for msgcrypt. Every layer that accepts caller or network input checks it here
// first, so the limits stay consistent between encoding and decoding.
//
// # Size Hierarchy
//
//   - MaxTextLength (3500 bytes): the gateway limit for a text message body.
//   - DefaultMinFrameLength (32 bytes): the default floor a padded plaintext
//     frame is filled up to before sealing.
//   - MaxMinFrameLength (256 bytes): the largest floor a single padding run can
//     reach, since the run length is stored in the last padding byte.
//   - MaxBlobSize (50MB): the largest attachment accepted for upload.
//   - MaxProcessingBuffer (1MB): the absolute maximum for an envelope.
//
// # Validation Functions
//
// Each validation function checks for empty input and size limit violations:
//
//	if err := limits.ValidateText(body); err != nil {
//	    // ErrMessageEmpty or ErrMessageTooLarge
//	}
//
// Errors wrap the sentinel values, so callers match them with errors.Is.
package limits
