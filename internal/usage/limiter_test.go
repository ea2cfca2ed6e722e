package usage

import (
	"testing"

	"github.com/voicebridge/voicebridge/pkg/kv"
)

func TestIncrementCountsEachCall(t *testing.T) {
	ctx := t.Context()
	l := NewLimiter(ctx, kv.NewMemory())

	for n := 1; n <= Quota+2; n++ {
		got := l.Increment(ctx)
		if got != n {
			t.Fatalf("Increment #%d = %d", n, got)
		}

		wantLimit := n >= Quota
		if l.HasReachedLimit() != wantLimit {
			t.Errorf("HasReachedLimit at count %d = %v, want %v", n, l.HasReachedLimit(), wantLimit)
		}
		if l.Remaining() != Quota-n {
			t.Errorf("Remaining at count %d = %d, want %d", n, l.Remaining(), Quota-n)
		}
	}

	// Remaining is not clamped and goes negative over quota.
	if l.Remaining() >= 0 {
		t.Errorf("Remaining over quota = %d, want negative", l.Remaining())
	}
}

func TestCountSurvivesRestart(t *testing.T) {
	ctx := t.Context()
	substrate := kv.NewMemory()

	l := NewLimiter(ctx, substrate)
	l.Increment(ctx)
	l.Increment(ctx)
	l.Increment(ctx)

	reloaded := NewLimiter(ctx, substrate)
	if reloaded.Count() != 3 {
		t.Errorf("Count after restart = %d, want 3", reloaded.Count())
	}
}

func TestReset(t *testing.T) {
	ctx := t.Context()
	substrate := kv.NewMemory()
	l := NewLimiter(ctx, substrate)

	for range Quota {
		l.Increment(ctx)
	}
	if !l.HasReachedLimit() {
		t.Fatal("limit should be reached at quota")
	}

	l.Reset(ctx)
	if l.Count() != 0 || l.HasReachedLimit() {
		t.Errorf("after reset: count=%d limitReached=%v", l.Count(), l.HasReachedLimit())
	}
	if NewLimiter(ctx, substrate).Count() != 0 {
		t.Error("reset not persisted")
	}
}

func TestMalformedStoredCountFailsSoft(t *testing.T) {
	ctx := t.Context()
	substrate := kv.NewMemory()
	if err := substrate.Set(ctx, StorageKey, []byte("not-a-number")); err != nil {
		t.Fatalf("seed substrate: %v", err)
	}

	l := NewLimiter(ctx, substrate)
	if l.Count() != 0 {
		t.Errorf("Count = %d, want 0 for malformed stored value", l.Count())
	}
}
