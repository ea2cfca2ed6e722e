// Package remote holds the HTTP clients for the two external speech
// services: transcription (speech-to-text) and translation with speech
// synthesis. Both are opaque request/response collaborators; any
// non-success status or error field in the body is a stage failure.
package remote

import (
	"fmt"
	"net/http"
	"time"
)

// Pipeline stage names, used in errors and failure events.
const (
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
)

var defaultClient = &http.Client{Timeout: 60 * time.Second}

// CallError describes a failed remote call. StatusCode is zero for
// transport-level failures.
type CallError struct {
	Stage      string
	StatusCode int
	Message    string
}

func (e *CallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Stage, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}
