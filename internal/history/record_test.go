package history

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusRevert(t *testing.T) {
	if got := StatusTranslating.Revert(); got != StatusTranscribed {
		t.Errorf("Revert(translating) = %s, want transcribed", got)
	}
	if got := StatusTranslated.Revert(); got != StatusTranscribed {
		t.Errorf("Revert(translated) = %s, want transcribed", got)
	}
	// No stage precedes transcription; the record stays retryable.
	if got := StatusTranscribing.Revert(); got != StatusTranscribing {
		t.Errorf("Revert(transcribing) = %s, want transcribing", got)
	}
}

func TestRecordJSONShape(t *testing.T) {
	rec := Record{
		ID:                "rec-1",
		Timestamp:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		OriginalFileName:  "recording-0:02.wav",
		OriginalAudioData: "AAAA",
		OriginalAudioType: "audio/wav",
		Transcription:     "hello",
		Status:            StatusTranscribed,
	}

	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "timestamp", "originalFileName", "originalAudioData", "originalAudioType", "transcription", "status"} {
		if _, ok := m[key]; !ok {
			t.Errorf("persisted JSON missing key %q", key)
		}
	}

	// Translation fields are absent until the stage succeeds.
	for _, key := range []string{"translatedText", "translatedAudioData", "translatedAudioType", "targetLanguage"} {
		if _, ok := m[key]; ok {
			t.Errorf("persisted JSON should omit empty %q", key)
		}
	}
}

func TestPatchPreservesUnsetFields(t *testing.T) {
	rec := Record{
		ID:            "rec-1",
		Transcription: "hello",
		Status:        StatusTranscribed,
	}

	status := StatusTranslating
	rec.apply(Patch{Status: &status})

	if rec.Transcription != "hello" {
		t.Errorf("transcription changed to %q", rec.Transcription)
	}
	if rec.Status != StatusTranslating {
		t.Errorf("status = %s, want translating", rec.Status)
	}
}
