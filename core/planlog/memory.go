package planlog

import (
	"context"
	"sync"
)

// MemoryStore keeps at most Capacity records in memory, dropping the oldest.
type MemoryStore struct {
	mu       sync.RWMutex
	recs     []LogRecord
	capacity int
}

// DefaultCapacity bounds a MemoryStore created with a non-positive capacity.
const DefaultCapacity = 1000

// NewMemoryStore returns an empty store.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{capacity: capacity}
}

func (m *MemoryStore) Append(_ context.Context, rec LogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	if over := len(m.recs) - m.capacity; over > 0 {
		m.recs = append([]LogRecord(nil), m.recs[over:]...)
	}
	return nil
}

func (m *MemoryStore) Query(_ context.Context, q LogQuery) ([]LogRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []LogRecord
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return limit(res, q), nil
}

func (m *MemoryStore) Close() error { return nil }
