package history

import (
	"context"
	"testing"
	"time"

	"github.com/voicebridge/voicebridge/pkg/kv"
)

func testRecord(id string) Record {
	return Record{
		ID:                id,
		Timestamp:         time.Now().UTC(),
		OriginalFileName:  id + ".wav",
		OriginalAudioData: "aGVsbG8=",
		OriginalAudioType: "audio/wav",
		Status:            StatusTranscribing,
	}
}

func TestAddSurvivesRestart(t *testing.T) {
	ctx := t.Context()
	substrate := kv.NewMemory()

	store := NewStore(ctx, substrate)
	rec := testRecord("rec-1")
	rec.Transcription = "hello"
	store.Add(ctx, rec)

	// A fresh store over the same substrate simulates a process restart.
	reloaded := NewStore(ctx, substrate)
	got, ok := reloaded.Get("rec-1")
	if !ok {
		t.Fatal("record missing after reload")
	}
	if got.Transcription != "hello" {
		t.Errorf("transcription = %q, want %q", got.Transcription, "hello")
	}
	if got.OriginalAudioData != rec.OriginalAudioData {
		t.Errorf("originalAudioData changed across restart")
	}
	if got.Status != StatusTranscribing {
		t.Errorf("status = %s, want transcribing", got.Status)
	}
}

func TestNewestFirstOrdering(t *testing.T) {
	ctx := t.Context()
	store := NewStore(ctx, kv.NewMemory())

	store.Add(ctx, testRecord("old"))
	store.Add(ctx, testRecord("new"))

	records := store.List()
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID != "new" || records[1].ID != "old" {
		t.Errorf("order = [%s %s], want [new old]", records[0].ID, records[1].ID)
	}
}

func TestUpdateKeepsPosition(t *testing.T) {
	ctx := t.Context()
	store := NewStore(ctx, kv.NewMemory())

	store.Add(ctx, testRecord("a"))
	store.Add(ctx, testRecord("b"))
	store.Add(ctx, testRecord("c"))

	text := "transcribed text"
	status := StatusTranscribed
	if _, ok := store.Update(ctx, "b", Patch{Transcription: &text, Status: &status}); !ok {
		t.Fatal("Update reported record not found")
	}

	records := store.List()
	if records[1].ID != "b" {
		t.Errorf("updated record moved to position of %q", records[1].ID)
	}
	if records[1].Transcription != text || records[1].Status != StatusTranscribed {
		t.Errorf("patch not applied: %+v", records[1])
	}
	if records[1].OriginalFileName != "b.wav" {
		t.Errorf("unpatched field changed: %q", records[1].OriginalFileName)
	}
}

func TestUpdateAbsentIDIsNoOp(t *testing.T) {
	ctx := t.Context()
	store := NewStore(ctx, kv.NewMemory())
	store.Add(ctx, testRecord("a"))

	status := StatusTranslated
	if _, ok := store.Update(ctx, "ghost", Patch{Status: &status}); ok {
		t.Fatal("Update on absent id reported success")
	}

	records := store.List()
	if len(records) != 1 || records[0].ID != "a" || records[0].Status != StatusTranscribing {
		t.Errorf("collection changed by no-op update: %+v", records)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := t.Context()
	store := NewStore(ctx, kv.NewMemory())
	store.Add(ctx, testRecord("a"))
	store.Add(ctx, testRecord("b"))

	store.Remove(ctx, "a")
	store.Remove(ctx, "a")

	records := store.List()
	if len(records) != 1 || records[0].ID != "b" {
		t.Errorf("records = %+v, want only b", records)
	}
}

func TestClearDeletesDurableKey(t *testing.T) {
	ctx := t.Context()
	substrate := kv.NewMemory()
	store := NewStore(ctx, substrate)
	store.Add(ctx, testRecord("a"))

	store.Clear(ctx)

	if got := store.List(); len(got) != 0 {
		t.Errorf("List after clear = %+v, want empty", got)
	}
	if _, err := substrate.Get(ctx, StorageKey); err == nil {
		t.Error("durable key still present after clear")
	}
	if got := NewStore(ctx, substrate).List(); len(got) != 0 {
		t.Errorf("reload after clear = %+v, want empty", got)
	}
}

func TestLoadMalformedDataFailsSoft(t *testing.T) {
	ctx := t.Context()
	substrate := kv.NewMemory()
	if err := substrate.Set(ctx, StorageKey, []byte("{not json")); err != nil {
		t.Fatalf("seed substrate: %v", err)
	}

	store := NewStore(ctx, substrate)
	if got := store.List(); len(got) != 0 {
		t.Errorf("List = %+v, want empty on malformed data", got)
	}

	// The store stays usable after the soft failure.
	store.Add(ctx, testRecord("a"))
	if store.Len() != 1 {
		t.Errorf("Len = %d after add, want 1", store.Len())
	}
}

func TestInterleavedUpdatesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, kv.NewMemory())
	store.Add(ctx, testRecord("a"))
	store.Add(ctx, testRecord("b"))

	textA := "alpha"
	textB := "beta"
	store.Update(ctx, "a", Patch{Transcription: &textA})
	store.Update(ctx, "b", Patch{Transcription: &textB})

	a, _ := store.Get("a")
	b, _ := store.Get("b")
	if a.Transcription != "alpha" || b.Transcription != "beta" {
		t.Errorf("cross-contaminated updates: a=%q b=%q", a.Transcription, b.Transcription)
	}
}
