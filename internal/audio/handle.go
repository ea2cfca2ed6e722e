package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/xid"
)

// Handle is a transient, revocable reference to materialized audio
// bytes. The backing file is an external resource, not garbage
// collected; the owner must call Release when the handle is no longer
// displayed.
type Handle struct {
	id   string
	path string
	mime string

	mu       sync.Mutex
	released bool
	owner    *Materializer
}

// Path returns the location of the materialized file.
func (h *Handle) Path() string { return h.path }

// MIME returns the declared content type of the audio.
func (h *Handle) MIME() string { return h.mime }

// Release removes the backing file and deregisters the handle.
// Releasing an already-released handle is a no-op.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true
	h.owner.forget(h.id)
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release audio handle: %w", err)
	}
	return nil
}

// Materializer writes audio bytes to files under a scratch directory
// and tracks the live handles so they can all be revoked on teardown.
type Materializer struct {
	dir string

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewMaterializer creates a materializer rooted at dir, creating the
// directory if needed.
func NewMaterializer(dir string) (*Materializer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio scratch dir: %w", err)
	}
	return &Materializer{
		dir:     dir,
		handles: make(map[string]*Handle),
	}, nil
}

// Materialize writes the bytes to a new file and returns a live handle.
func (m *Materializer) Materialize(data []byte, mimeType string) (*Handle, error) {
	id := xid.New().String()
	path := filepath.Join(m.dir, id+extensionFor(mimeType))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("materialize audio: %w", err)
	}

	h := &Handle{id: id, path: path, mime: mimeType, owner: m}
	m.mu.Lock()
	m.handles[id] = h
	m.mu.Unlock()
	return h, nil
}

// Live returns the number of handles not yet released.
func (m *Materializer) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// ReleaseAll revokes every live handle. Called on process teardown.
func (m *Materializer) ReleaseAll() {
	m.mu.Lock()
	live := make([]*Handle, 0, len(m.handles))
	for _, h := range m.handles {
		live = append(live, h)
	}
	m.mu.Unlock()

	for _, h := range live {
		h.Release()
	}
}

func (m *Materializer) forget(id string) {
	m.mu.Lock()
	delete(m.handles, id)
	m.mu.Unlock()
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/x-m4a":
		return ".m4a"
	case "audio/ogg":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
