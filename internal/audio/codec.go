// Package audio converts opaque audio payloads between their binary and
// text-encoded forms and materializes stored bytes into revocable
// playback files.
package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMalformedEncoding marks a stored payload that is not valid base64.
// Callers treat it as a corrupt-record condition scoped to that one
// resource, never as a store-wide failure.
var ErrMalformedEncoding = errors.New("malformed base64 audio payload")

// Encode converts binary audio to its text-safe storage form.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Decode is the inverse of Encode. Invalid input yields an error
// matching ErrMalformedEncoding.
func Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return b, nil
}
