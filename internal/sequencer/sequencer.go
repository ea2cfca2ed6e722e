// Package sequencer drives the two-stage remote pipeline
// (transcribe, then translate+synthesize) and keeps the history store
// consistent with real-world outcomes. Status is written optimistically
// before each remote call and confirmed or reverted by a single atomic
// update afterwards.
package sequencer

import (
	"context"
	"errors"
	"time"

	"github.com/pitabwire/util"
	"github.com/rs/xid"

	"github.com/voicebridge/voicebridge/internal/audio"
	"github.com/voicebridge/voicebridge/internal/history"
	"github.com/voicebridge/voicebridge/internal/remote"
	"github.com/voicebridge/voicebridge/internal/usage"
	"github.com/voicebridge/voicebridge/pkg/events"
	"github.com/voicebridge/voicebridge/pkg/languages"
)

// ErrQuotaExhausted is returned when the usage quota blocks a new
// billable call.
var ErrQuotaExhausted = errors.New("usage quota exhausted")

// ErrRecordNotFound is returned when the referenced history record does
// not exist.
var ErrRecordNotFound = errors.New("history record not found")

// ErrNotTranslatable is returned when a record holds no completed
// transcription to translate or edit.
var ErrNotTranslatable = errors.New("record has no completed transcription")

// Transcriber is the remote speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, fileName string) (string, error)
}

// Translator is the remote translation+synthesis collaborator.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (remote.Translation, error)
}

// SubmitInput is one uploaded or recorded audio item.
type SubmitInput struct {
	FileName string
	MIMEType string
	Data     []byte
}

// Sequencer owns the pipeline. Concurrent items are independent; all
// record mutations go through the history store, which isolates updates
// per id.
type Sequencer struct {
	store       *history.Store
	limiter     *usage.Limiter
	transcriber Transcriber
	translator  Translator
	catalog     *languages.Catalog
	pub         *events.Publisher
}

// New wires a sequencer from its collaborators.
func New(store *history.Store, limiter *usage.Limiter, transcriber Transcriber, translator Translator, catalog *languages.Catalog, pub *events.Publisher) *Sequencer {
	return &Sequencer{
		store:       store,
		limiter:     limiter,
		transcriber: transcriber,
		translator:  translator,
		catalog:     catalog,
		pub:         pub,
	}
}

// SubmitTranscription creates a history record for the audio and runs
// the transcribe stage. On failure the record is kept at the
// transcribing stage, retryable via Retranscribe semantics of a new
// submission; the error is surfaced, never fatal.
func (s *Sequencer) SubmitTranscription(ctx context.Context, in SubmitInput) (history.Record, error) {
	if s.limiter.HasReachedLimit() {
		s.emitLimitReached(ctx, "")
		return history.Record{}, ErrQuotaExhausted
	}

	rec := history.Record{
		ID:                xid.New().String(),
		Timestamp:         time.Now().UTC(),
		OriginalFileName:  in.FileName,
		OriginalAudioData: audio.Encode(in.Data),
		OriginalAudioType: in.MIMEType,
		Status:            history.StatusTranscribing,
	}
	s.store.Add(ctx, rec)
	s.bill(ctx, rec.ID)

	s.emit(ctx, events.TranscriptionStarted, rec.ID, events.TranscriptionStartedData{
		FileName:  in.FileName,
		MIMEType:  in.MIMEType,
		SizeBytes: len(in.Data),
	})

	text, err := s.transcriber.Transcribe(ctx, in.Data, in.FileName)
	if err != nil {
		reverted := rec.Status.Revert()
		s.store.Update(ctx, rec.ID, history.Patch{Status: &reverted})
		s.emit(ctx, events.TranscriptionFailed, rec.ID, failureData(remote.StageTranscribe, err))
		current, _ := s.store.Get(rec.ID)
		return current, err
	}

	status := history.StatusTranscribed
	updated, _ := s.store.Update(ctx, rec.ID, history.Patch{
		Transcription: &text,
		Status:        &status,
	})
	s.emit(ctx, events.TranscriptionCompleted, rec.ID, events.TranscriptionCompletedData{Transcription: text})
	return updated, nil
}

// Translate runs the translate+synthesize stage for an already
// transcribed record. On failure the status reverts to transcribed and
// the completed transcription is retained, so the stage can be retried
// without re-entering prior input.
func (s *Sequencer) Translate(ctx context.Context, id, language string) (history.Record, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return history.Record{}, ErrRecordNotFound
	}
	if rec.Transcription == "" || (rec.Status != history.StatusTranscribed && rec.Status != history.StatusTranslated) {
		return rec, ErrNotTranslatable
	}

	if s.limiter.HasReachedLimit() {
		s.emitLimitReached(ctx, id)
		return rec, ErrQuotaExhausted
	}

	code := s.catalog.Resolve(language)

	translating := history.StatusTranslating
	s.store.Update(ctx, id, history.Patch{Status: &translating})
	s.bill(ctx, id)

	s.emit(ctx, events.TranslationStarted, id, events.TranslationStartedData{TargetLanguage: code})

	result, err := s.translator.Translate(ctx, rec.Transcription, code)
	if err != nil {
		reverted := translating.Revert()
		s.store.Update(ctx, id, history.Patch{Status: &reverted})
		s.emit(ctx, events.TranslationFailed, id, failureData(remote.StageTranslate, err))
		current, _ := s.store.Get(id)
		return current, err
	}

	translated := history.StatusTranslated
	updated, _ := s.store.Update(ctx, id, history.Patch{
		TranslatedText:      &result.Text,
		TranslatedAudioData: &result.AudioData,
		TranslatedAudioType: &result.ContentType,
		TargetLanguage:      &code,
		Status:              &translated,
	})
	s.emit(ctx, events.TranslationCompleted, id, events.TranslationCompletedData{
		TranslatedText: result.Text,
		TargetLanguage: code,
		ContentType:    result.ContentType,
	})
	return updated, nil
}

// EditTranscription replaces the transcription text. Editing a
// translated record re-opens it for re-translation by reverting the
// status to transcribed; a fresh transcription is not required.
func (s *Sequencer) EditTranscription(ctx context.Context, id, text string) (history.Record, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return history.Record{}, ErrRecordNotFound
	}
	if rec.Status == history.StatusTranscribing || rec.Status == history.StatusTranslating {
		return rec, ErrNotTranslatable
	}

	patch := history.Patch{Transcription: &text}
	if rec.Status == history.StatusTranslated {
		reopened := history.StatusTranscribed
		patch.Status = &reopened
	}

	updated, _ := s.store.Update(ctx, id, patch)
	s.emit(ctx, events.TranscriptionEdited, id, events.TranscriptionCompletedData{Transcription: text})
	return updated, nil
}

// Remove deletes one record.
func (s *Sequencer) Remove(ctx context.Context, id string) {
	s.store.Remove(ctx, id)
	s.emit(ctx, events.RecordRemoved, id, nil)
}

// ClearHistory empties the whole collection.
func (s *Sequencer) ClearHistory(ctx context.Context) {
	s.store.Clear(ctx)
	s.emit(ctx, events.HistoryCleared, "", nil)
}

// bill records one unit of usage and announces quota exhaustion the
// moment the last unit is consumed.
func (s *Sequencer) bill(ctx context.Context, recordID string) {
	count := s.limiter.Increment(ctx)
	if count == usage.Quota {
		s.emitLimitReached(ctx, recordID)
	}
}

func (s *Sequencer) emitLimitReached(ctx context.Context, recordID string) {
	s.emit(ctx, events.UsageLimitReached, recordID, events.UsageLimitReachedData{
		Count: s.limiter.Count(),
		Quota: usage.Quota,
	})
}

func (s *Sequencer) emit(ctx context.Context, et events.EventType, recordID string, data any) {
	if err := s.pub.Emit(ctx, et, recordID, data); err != nil {
		util.Log(ctx).WithError(err).Error("sequencer: emit event")
	}
}

func failureData(stage string, err error) events.StageFailedData {
	data := events.StageFailedData{Stage: stage, Error: err.Error()}
	var callErr *remote.CallError
	if errors.As(err, &callErr) {
		data.StatusCode = callErr.StatusCode
	}
	return data
}
