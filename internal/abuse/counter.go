package abuse

import (
	"context"
	"sync"
	"time"
)

// CounterStore is the windowed counter backing the guard: atomic increment
// with an expiry set when the window opens, plus a read of the live count.
// Implementations must keep increments atomic per key; no cross-key ordering
// is required.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// MemoryCounter is an in-process CounterStore for tests and single-process
// deployments. State is lost on restart, which is acceptable for a heuristic
// circuit breaker.
type MemoryCounter struct {
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	nextSweep time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// sweepInterval bounds how often Incr scans the map for expired windows, so
// counters for long-gone IPs do not accumulate across the process lifetime.
const sweepInterval = time.Minute

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryCounter creates an in-memory counter store.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Incr increments the key's counter, opening a new window if none is live.
func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.After(m.nextSweep) {
		for k, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, k)
			}
		}
		m.nextSweep = now.Add(sweepInterval)
	}
	e, ok := m.entries[key]
	if !ok || now.After(e.expiresAt) {
		e = &memoryEntry{expiresAt: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// Get returns the live count for key, zero when the window has expired.
func (m *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || m.now().After(e.expiresAt) {
		return 0, nil
	}
	return e.count, nil
}
