// Package notify keeps a bounded feed of user-visible notifications,
// the server-side home of the transient toasts the UI shows. Clients
// poll incrementally by sequence number.
package notify

import (
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/voicebridge/voicebridge/pkg/events"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// DefaultMaxEntries bounds the in-memory feed.
const DefaultMaxEntries = 200

// Notification is one feed entry.
type Notification struct {
	Seq       int64     `json:"seq"`
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	RecordID  string    `json:"record_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Center stores recent notifications and provides incremental reads.
type Center struct {
	mu         sync.RWMutex
	nextSeq    int64
	maxEntries int
	items      []Notification
}

// NewCenter creates a bounded notification feed.
func NewCenter(maxEntries int) *Center {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Center{
		maxEntries: maxEntries,
		items:      make([]Notification, 0, maxEntries),
	}
}

// Push appends one notification, assigning sequence, id and timestamp.
func (c *Center) Push(severity Severity, recordID, message string) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSeq++
	n := Notification{
		Seq:       c.nextSeq,
		ID:        xid.New().String(),
		Severity:  severity,
		Message:   message,
		RecordID:  recordID,
		Timestamp: time.Now().UTC(),
	}

	c.items = append(c.items, n)
	if len(c.items) > c.maxEntries {
		trim := len(c.items) - c.maxEntries
		c.items = append([]Notification(nil), c.items[trim:]...)
	}

	return n
}

// Since returns notifications with sequence strictly greater than seq.
func (c *Center) Since(seq int64) []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if n.Seq > seq {
			out = append(out, n)
		}
	}
	return out
}

// Consume renders a pipeline event into a notification. Events with no
// user-facing meaning are ignored.
func (c *Center) Consume(env events.Envelope) {
	switch env.Type {
	case events.TranscriptionCompleted:
		c.Push(SeveritySuccess, env.RecordID, "Audio transcribed successfully")
	case events.TranslationCompleted:
		c.Push(SeveritySuccess, env.RecordID, "Audio translated successfully")
	case events.TranscriptionFailed:
		c.Push(SeverityError, env.RecordID, "Failed to transcribe audio")
	case events.TranslationFailed:
		c.Push(SeverityError, env.RecordID, "Failed to translate audio")
	case events.UsageLimitReached:
		c.Push(SeverityError, env.RecordID, "Translation limit reached")
	case events.HistoryCleared:
		c.Push(SeverityInfo, "", "Translation history cleared")
	}
}

// Run consumes envelopes from a local event subscription until the
// channel closes.
func (c *Center) Run(ch <-chan events.Envelope) {
	for env := range ch {
		c.Consume(env)
	}
}
