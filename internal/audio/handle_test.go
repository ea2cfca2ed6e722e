package audio

import (
	"os"
	"strings"
	"testing"
)

func TestMaterializeAndRelease(t *testing.T) {
	m, err := NewMaterializer(t.TempDir())
	if err != nil {
		t.Fatalf("NewMaterializer: %v", err)
	}

	h, err := m.Materialize([]byte("audio-bytes"), "audio/wav")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	if !strings.HasSuffix(h.Path(), ".wav") {
		t.Errorf("path = %q, want .wav suffix", h.Path())
	}
	if h.MIME() != "audio/wav" {
		t.Errorf("mime = %q", h.MIME())
	}

	data, err := os.ReadFile(h.Path())
	if err != nil {
		t.Fatalf("read materialized file: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("materialized content = %q", data)
	}
	if m.Live() != 1 {
		t.Errorf("Live = %d, want 1", m.Live())
	}

	if err := h.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(h.Path()); !os.IsNotExist(err) {
		t.Error("backing file still exists after release")
	}
	if m.Live() != 0 {
		t.Errorf("Live after release = %d, want 0", m.Live())
	}

	// Releasing twice is a no-op.
	if err := h.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

func TestReleaseAll(t *testing.T) {
	m, err := NewMaterializer(t.TempDir())
	if err != nil {
		t.Fatalf("NewMaterializer: %v", err)
	}

	var paths []string
	for range 3 {
		h, err := m.Materialize([]byte("x"), "audio/mpeg")
		if err != nil {
			t.Fatalf("Materialize: %v", err)
		}
		paths = append(paths, h.Path())
	}

	m.ReleaseAll()

	if m.Live() != 0 {
		t.Errorf("Live = %d after ReleaseAll", m.Live())
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("file %q not removed", p)
		}
	}
}

func TestUnknownMIMEFallsBackToBin(t *testing.T) {
	m, err := NewMaterializer(t.TempDir())
	if err != nil {
		t.Fatalf("NewMaterializer: %v", err)
	}
	h, err := m.Materialize([]byte("x"), "application/octet-stream")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	defer h.Release()

	if !strings.HasSuffix(h.Path(), ".bin") {
		t.Errorf("path = %q, want .bin suffix", h.Path())
	}
}
