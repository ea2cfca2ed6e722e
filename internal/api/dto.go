package api

import (
	"time"

	"github.com/voicebridge/voicebridge/internal/history"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TranslateRequest asks for a record's transcription to be translated.
type TranslateRequest struct {
	TargetLanguage string `json:"targetLanguage"`
}

// EditRequest replaces a record's transcription text.
type EditRequest struct {
	Transcription string `json:"transcription"`
}

// RecordResponse is the API view of a history record. Audio payloads
// are not inlined; clients fetch them through the audio endpoints.
type RecordResponse struct {
	ID                  string `json:"id"`
	Timestamp           string `json:"timestamp"`
	OriginalFileName    string `json:"original_file_name"`
	OriginalAudioType   string `json:"original_audio_type"`
	OriginalAudioURL    string `json:"original_audio_url"`
	Transcription       string `json:"transcription"`
	TranslatedText      string `json:"translated_text,omitempty"`
	TargetLanguage      string `json:"target_language,omitempty"`
	TranslatedAudioType string `json:"translated_audio_type,omitempty"`
	TranslatedAudioURL  string `json:"translated_audio_url,omitempty"`
	Status              string `json:"status"`
}

// UsageResponse reports the current usage counter against the quota.
type UsageResponse struct {
	Count        int  `json:"count"`
	Quota        int  `json:"quota"`
	Remaining    int  `json:"remaining"`
	LimitReached bool `json:"limit_reached"`
}

func toRecordResponse(rec history.Record) RecordResponse {
	resp := RecordResponse{
		ID:                rec.ID,
		Timestamp:         rec.Timestamp.Format(time.RFC3339),
		OriginalFileName:  rec.OriginalFileName,
		OriginalAudioType: rec.OriginalAudioType,
		OriginalAudioURL:  "/api/v1/transcriptions/" + rec.ID + "/audio?side=original",
		Transcription:     rec.Transcription,
		TranslatedText:    rec.TranslatedText,
		TargetLanguage:    rec.TargetLanguage,
		Status:            string(rec.Status),
	}
	if rec.TranslatedAudioData != "" {
		resp.TranslatedAudioType = rec.TranslatedAudioType
		resp.TranslatedAudioURL = "/api/v1/transcriptions/" + rec.ID + "/audio?side=translated"
	}
	return resp
}
