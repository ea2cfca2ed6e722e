package history

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/pitabwire/util"

	"github.com/voicebridge/voicebridge/pkg/kv"
)

// StorageKey is the durable key holding the serialized history collection.
const StorageKey = "translation-history"

// Store maintains the ordered collection of translation records, newest
// first, and keeps it synchronized with a durable key-value substrate.
// Every mutation rewrites the whole value; a malformed stored value
// degrades to an empty collection instead of failing the caller.
type Store struct {
	mu      sync.Mutex
	kv      kv.Store
	records []Record
}

// NewStore creates a store over the given substrate and loads the
// persisted collection.
func NewStore(ctx context.Context, substrate kv.Store) *Store {
	s := &Store{kv: substrate}
	s.Load(ctx)
	return s
}

// Load re-reads the durable substrate, replacing the in-memory
// collection. Missing or malformed data yields an empty collection; the
// failure is logged, never raised.
func (s *Store) Load(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			util.Log(ctx).WithError(err).Error("history: read substrate")
		}
		s.records = nil
		return nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		util.Log(ctx).WithError(err).Error("history: parse stored collection")
		s.records = nil
		return nil
	}

	s.records = records
	return s.snapshotLocked()
}

// List returns a snapshot of the collection, newest first.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			return s.records[i], true
		}
	}
	return Record{}, false
}

// Add prepends the record and persists the collection.
func (s *Store) Add(ctx context.Context, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]Record{rec}, s.records...)
	s.persistLocked(ctx)
}

// Update merges the patch into the record matching id and persists. An
// absent id is a no-op, not an error. The record keeps its position.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		s.records[i].apply(patch)
		s.persistLocked(ctx)
		return s.records[i], true
	}
	return Record{}, false
}

// Remove deletes the record matching id, if present, preserving the
// order of the remaining records. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.persistLocked(ctx)
			return
		}
	}
}

// Clear empties the collection and deletes the durable key.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		util.Log(ctx).WithError(err).Error("history: delete substrate key")
	}
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// persistLocked rewrites the whole collection. A serialization failure
// degrades to an empty-collection write so one bad record cannot wedge
// the store permanently; the data loss is logged.
func (s *Store) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(s.records)
	if err != nil {
		util.Log(ctx).WithError(err).Error("history: serialize collection, writing empty")
		raw = []byte("[]")
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		util.Log(ctx).WithError(err).Error("history: write substrate")
	}
}

func (s *Store) snapshotLocked() []Record {
	cp := make([]Record, len(s.records))
	copy(cp, s.records)
	return cp
}
