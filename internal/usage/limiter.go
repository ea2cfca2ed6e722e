package usage

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/pitabwire/util"

	"github.com/voicebridge/voicebridge/pkg/kv"
)

// Quota is the fixed number of billable remote calls allowed before the
// limiter reports exhaustion.
const Quota = 10

// StorageKey is the durable key holding the stringified usage count.
const StorageKey = "translation-usage-count"

// Limiter tracks a persisted usage counter bounded by Quota. The counter
// itself is never clamped; consumers enforce the quota via
// HasReachedLimit before starting billable work.
type Limiter struct {
	mu    sync.Mutex
	kv    kv.Store
	count int
}

// NewLimiter creates a limiter over the given substrate and loads the
// persisted count. An unreadable or unparseable value degrades to zero.
func NewLimiter(ctx context.Context, substrate kv.Store) *Limiter {
	l := &Limiter{kv: substrate}
	l.Load(ctx)
	return l
}

// Load re-reads the persisted count.
func (l *Limiter) Load(ctx context.Context) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			util.Log(ctx).WithError(err).Error("usage: read substrate")
		}
		l.count = 0
		return 0
	}

	n, convErr := strconv.Atoi(string(raw))
	if convErr == nil && n < 0 {
		convErr = errors.New("negative count")
	}
	if convErr != nil {
		util.Log(ctx).WithError(convErr).Error("usage: stored count invalid, resetting to 0")
		n = 0
	}
	l.count = n
	return n
}

// Increment adds one unit of usage and persists the new count. Each call
// is a distinct unit; there is no idempotency.
func (l *Limiter) Increment(ctx context.Context) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
	l.persistLocked(ctx)
	return l.count
}

// Reset sets the count to zero and persists.
func (l *Limiter) Reset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count = 0
	l.persistLocked(ctx)
}

// Count returns the current usage count.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Remaining returns quota minus count. It goes negative once the quota
// is exceeded; it is not clamped.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Quota - l.count
}

// HasReachedLimit reports whether the count has reached the quota.
func (l *Limiter) HasReachedLimit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count >= Quota
}

func (l *Limiter) persistLocked(ctx context.Context) {
	if err := l.kv.Set(ctx, StorageKey, []byte(strconv.Itoa(l.count))); err != nil {
		util.Log(ctx).WithError(err).Error("usage: write substrate")
	}
}
