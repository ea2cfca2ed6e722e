package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	TranscriptionStarted   EventType = "transcription.started"
	TranscriptionCompleted EventType = "transcription.completed"
	TranscriptionFailed    EventType = "transcription.failed"
	TranslationStarted     EventType = "translation.started"
	TranslationCompleted   EventType = "translation.completed"
	TranslationFailed      EventType = "translation.failed"
	TranscriptionEdited    EventType = "transcription.edited"
	RecordRemoved          EventType = "record.removed"
	HistoryCleared         EventType = "history.cleared"
	UsageLimitReached      EventType = "usage.limit_reached"
)

// Envelope is the standard event wrapper published to the event bus.
type Envelope struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Source    string          `json:"source"`
	RecordID  string          `json:"record_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// TranscriptionStartedData is the payload for transcription.started events.
type TranscriptionStartedData struct {
	FileName  string `json:"file_name"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int    `json:"size_bytes"`
}

// TranscriptionCompletedData is the payload for transcription.completed events.
type TranscriptionCompletedData struct {
	Transcription string `json:"transcription"`
}

// TranslationStartedData is the payload for translation.started events.
type TranslationStartedData struct {
	TargetLanguage string `json:"target_language"`
}

// TranslationCompletedData is the payload for translation.completed events.
type TranslationCompletedData struct {
	TranslatedText string `json:"translated_text"`
	TargetLanguage string `json:"target_language"`
	ContentType    string `json:"content_type"`
}

// StageFailedData is the payload for transcription.failed and
// translation.failed events.
type StageFailedData struct {
	Stage      string `json:"stage"`
	Error      string `json:"error"`
	StatusCode int    `json:"status_code,omitempty"`
}

// UsageLimitReachedData is the payload for usage.limit_reached events.
type UsageLimitReachedData struct {
	Count int `json:"count"`
	Quota int `json:"quota"`
}
