package history

import "time"

// Status tracks how far a record has progressed through the pipeline.
type Status string

const (
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusTranslating  Status = "translating"
	StatusTranslated   Status = "translated"
)

// Revert returns the status a record falls back to when the in-flight
// stage fails: the last successfully completed stage. A failed
// transcription has no earlier stage, so the record stays at
// transcribing and remains retryable.
func (s Status) Revert() Status {
	switch s {
	case StatusTranslating, StatusTranslated:
		return StatusTranscribed
	default:
		return StatusTranscribing
	}
}

// Record is one persisted unit of work spanning a transcription and an
// optional translation. Field names match the persisted JSON shape, so
// an exported browser history imports unchanged.
type Record struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	OriginalFileName    string    `json:"originalFileName"`
	OriginalAudioData   string    `json:"originalAudioData"`
	OriginalAudioType   string    `json:"originalAudioType"`
	Transcription       string    `json:"transcription"`
	TranslatedText      string    `json:"translatedText,omitempty"`
	TranslatedAudioData string    `json:"translatedAudioData,omitempty"`
	TranslatedAudioType string    `json:"translatedAudioType,omitempty"`
	TargetLanguage      string    `json:"targetLanguage,omitempty"`
	Status              Status    `json:"status"`
}

// Patch carries a partial update for a record. Nil fields are left
// untouched; originalAudioData and originalAudioType are immutable after
// creation and deliberately absent here.
type Patch struct {
	Transcription       *string
	TranslatedText      *string
	TranslatedAudioData *string
	TranslatedAudioType *string
	TargetLanguage      *string
	Status              *Status
}

func (r *Record) apply(p Patch) {
	if p.Transcription != nil {
		r.Transcription = *p.Transcription
	}
	if p.TranslatedText != nil {
		r.TranslatedText = *p.TranslatedText
	}
	if p.TranslatedAudioData != nil {
		r.TranslatedAudioData = *p.TranslatedAudioData
	}
	if p.TranslatedAudioType != nil {
		r.TranslatedAudioType = *p.TranslatedAudioType
	}
	if p.TargetLanguage != nil {
		r.TargetLanguage = *p.TargetLanguage
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
}
