package remote

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranscribeSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "key-1" {
			t.Error("missing subscription key header")
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "clip.wav" {
			t.Errorf("filename = %q, want clip.wav", hdr.Filename)
		}

		json.NewEncoder(w).Encode(map[string]string{"text": "hello"})
	}))
	defer ts.Close()

	tr := NewTranscriber(ts.URL, "key-1")
	text, err := tr.Transcribe(t.Context(), []byte("riff"), "clip.wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q, want %q", text, "hello")
	}
}

func TestTranscribeHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer ts.Close()

	tr := NewTranscriber(ts.URL, "")
	_, err := tr.Transcribe(t.Context(), []byte("riff"), "clip.wav")

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error = %v, want *CallError", err)
	}
	if callErr.Stage != StageTranscribe || callErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("CallError = %+v", callErr)
	}
}

func TestTranscribeErrorField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "unsupported format"})
	}))
	defer ts.Close()

	tr := NewTranscriber(ts.URL, "")
	_, err := tr.Transcribe(t.Context(), nil, "clip.ogg")

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error = %v, want *CallError", err)
	}
	if callErr.Message != "unsupported format" {
		t.Errorf("message = %q", callErr.Message)
	}
}

func TestTranslateSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["text"] != "hello" || req["targetLanguage"] != "tw" {
			t.Errorf("request = %v", req)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"translatedText": "akwaaba",
			"audioData":      "AAAA",
			"contentType":    "audio/wav",
		})
	}))
	defer ts.Close()

	tr := NewTranslator(ts.URL, "key-1")
	got, err := tr.Translate(t.Context(), "hello", "tw")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got.Text != "akwaaba" || got.AudioData != "AAAA" || got.ContentType != "audio/wav" {
		t.Errorf("Translation = %+v", got)
	}
}

func TestTranslateDefaultsContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"translatedText": "akwaaba",
			"audioData":      "AAAA",
		})
	}))
	defer ts.Close()

	tr := NewTranslator(ts.URL, "")
	got, err := tr.Translate(t.Context(), "hello", "tw")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got.ContentType != "audio/wav" {
		t.Errorf("contentType = %q, want audio/wav default", got.ContentType)
	}
}

func TestTranslateTransportError(t *testing.T) {
	tr := NewTranslator("http://127.0.0.1:1", "")
	_, err := tr.Translate(t.Context(), "hello", "tw")

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error = %v, want *CallError", err)
	}
	if callErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", callErr.StatusCode)
	}
}
