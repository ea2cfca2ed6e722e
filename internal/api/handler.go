// Package api exposes the transcription pipeline over REST.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/pitabwire/util"

	"github.com/voicebridge/voicebridge/internal/audio"
	"github.com/voicebridge/voicebridge/internal/history"
	"github.com/voicebridge/voicebridge/internal/remote"
	"github.com/voicebridge/voicebridge/internal/sequencer"
	"github.com/voicebridge/voicebridge/internal/usage"
	"github.com/voicebridge/voicebridge/pkg/languages"
	"github.com/voicebridge/voicebridge/pkg/notify"
)

const maxRequestBodySize = 1 << 20 // 1 MiB

// maxUploadSize bounds audio uploads.
const maxUploadSize = 10 << 20 // 10 MiB

// Handler provides REST endpoints for the transcription pipeline.
type Handler struct {
	seq      *sequencer.Sequencer
	store    *history.Store
	limiter  *usage.Limiter
	catalog  *languages.Catalog
	center   *notify.Center
	audioDir *audio.Materializer

	handleMu sync.Mutex
	handles  map[string]*audio.Handle
}

// NewHandler creates the API handler.
func NewHandler(seq *sequencer.Sequencer, store *history.Store, limiter *usage.Limiter, catalog *languages.Catalog, center *notify.Center, audioDir *audio.Materializer) *Handler {
	return &Handler{
		seq:      seq,
		store:    store,
		limiter:  limiter,
		catalog:  catalog,
		center:   center,
		audioDir: audioDir,
		handles:  make(map[string]*audio.Handle),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/transcriptions", h.Submit)
	mux.HandleFunc("GET /api/v1/transcriptions", h.List)
	mux.HandleFunc("GET /api/v1/transcriptions/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/transcriptions/{id}", h.Edit)
	mux.HandleFunc("DELETE /api/v1/transcriptions/{id}", h.Delete)
	mux.HandleFunc("DELETE /api/v1/transcriptions", h.Clear)
	mux.HandleFunc("POST /api/v1/transcriptions/{id}/translate", h.Translate)
	mux.HandleFunc("GET /api/v1/transcriptions/{id}/audio", h.Audio)
	mux.HandleFunc("GET /api/v1/usage", h.Usage)
	mux.HandleFunc("POST /api/v1/usage/reset", h.ResetUsage)
	mux.HandleFunc("GET /api/v1/notifications", h.Notifications)
	mux.HandleFunc("GET /api/v1/languages", h.Languages)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writePipelineError maps sequencer and remote failures onto HTTP
// statuses. Remote stage failures surface as bad gateway so the client
// can tell its own mistakes from upstream ones.
func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sequencer.ErrQuotaExhausted):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, sequencer.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sequencer.ErrNotTranslatable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		var callErr *remote.CallError
		if errors.As(err, &callErr) {
			writeError(w, http.StatusBadGateway, callErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Submit handles POST /api/v1/transcriptions
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "audio file is empty")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	rec, err := h.seq.SubmitTranscription(r.Context(), sequencer.SubmitInput{
		FileName: header.Filename,
		MIMEType: mimeType,
		Data:     data,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(rec))
}

// List handles GET /api/v1/transcriptions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records := h.store.List()
	resp := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/transcriptions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// Edit handles PUT /api/v1/transcriptions/{id}
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Transcription == "" {
		writeError(w, http.StatusBadRequest, "transcription is required")
		return
	}

	rec, err := h.seq.EditTranscription(r.Context(), r.PathValue("id"), req.Transcription)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	// An edited record is re-opened for re-translation; drop any stale
	// synthesis so the next fetch reflects the record's current state.
	h.invalidateHandle(rec.ID, "translated")
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// Delete handles DELETE /api/v1/transcriptions/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.releaseHandles(id)
	h.seq.Remove(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/v1/transcriptions
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.releaseHandles("")
	h.seq.ClearHistory(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Translate handles POST /api/v1/transcriptions/{id}/translate
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "targetLanguage is required")
		return
	}

	rec, err := h.seq.Translate(r.Context(), r.PathValue("id"), req.TargetLanguage)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	// The synthesis changed; a cached file would serve the old audio.
	h.invalidateHandle(rec.ID, "translated")
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// Audio handles GET /api/v1/transcriptions/{id}/audio?side=original|translated.
// The stored transport encoding is decoded and materialized to a scratch
// file on first access; the file lives until the record is deleted, the
// history cleared, or the process shuts down.
func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	side := r.URL.Query().Get("side")
	if side == "" {
		side = "original"
	}

	var encoded, mimeType string
	switch side {
	case "original":
		encoded, mimeType = rec.OriginalAudioData, rec.OriginalAudioType
	case "translated":
		encoded, mimeType = rec.TranslatedAudioData, rec.TranslatedAudioType
	default:
		writeError(w, http.StatusBadRequest, "side must be original or translated")
		return
	}
	if encoded == "" {
		writeError(w, http.StatusNotFound, "record has no "+side+" audio")
		return
	}

	handle, err := h.handleFor(id, side, encoded, mimeType)
	if err != nil {
		// A corrupt stored payload poisons only this resource.
		if errors.Is(err, audio.ErrMalformedEncoding) {
			writeError(w, http.StatusGone, "stored audio is corrupt")
			return
		}
		util.Log(r.Context()).WithError(err).Error("api: materialize audio")
		writeError(w, http.StatusInternalServerError, "failed to materialize audio")
		return
	}

	w.Header().Set("Content-Type", handle.MIME())
	http.ServeFile(w, r, handle.Path())
}

// Usage handles GET /api/v1/usage
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, UsageResponse{
		Count:        h.limiter.Count(),
		Quota:        usage.Quota,
		Remaining:    h.limiter.Remaining(),
		LimitReached: h.limiter.HasReachedLimit(),
	})
}

// ResetUsage handles POST /api/v1/usage/reset
func (h *Handler) ResetUsage(w http.ResponseWriter, r *http.Request) {
	h.limiter.Reset(r.Context())
	writeJSON(w, http.StatusOK, UsageResponse{
		Count:     0,
		Quota:     usage.Quota,
		Remaining: usage.Quota,
	})
}

// Notifications handles GET /api/v1/notifications?since=N
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = n
	}
	writeJSON(w, http.StatusOK, h.center.Since(since))
}

// Languages handles GET /api/v1/languages
func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.All())
}

// handleFor returns the cached audio handle for a record side,
// materializing it on first use.
func (h *Handler) handleFor(id, side, encoded, mimeType string) (*audio.Handle, error) {
	key := id + "/" + side

	h.handleMu.Lock()
	defer h.handleMu.Unlock()

	if handle, ok := h.handles[key]; ok {
		return handle, nil
	}

	data, err := audio.Decode(encoded)
	if err != nil {
		return nil, err
	}
	handle, err := h.audioDir.Materialize(data, mimeType)
	if err != nil {
		return nil, err
	}
	h.handles[key] = handle
	return handle, nil
}

// invalidateHandle revokes the cached materialized audio for one record
// side so the next fetch rematerializes from the current payload.
func (h *Handler) invalidateHandle(id, side string) {
	key := id + "/" + side

	h.handleMu.Lock()
	defer h.handleMu.Unlock()

	if handle, ok := h.handles[key]; ok {
		handle.Release()
		delete(h.handles, key)
	}
}

// releaseHandles revokes materialized audio for one record, or for all
// records when id is empty.
func (h *Handler) releaseHandles(id string) {
	h.handleMu.Lock()
	defer h.handleMu.Unlock()

	for key, handle := range h.handles {
		if id != "" && key != id+"/original" && key != id+"/translated" {
			continue
		}
		handle.Release()
		delete(h.handles, key)
	}
}
