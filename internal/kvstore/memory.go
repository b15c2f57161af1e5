package kvstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded map with insertion-order tracking. When a
// capacity is configured and exceeded, the oldest half of the entries is
// evicted in bulk.
type MemoryStore struct {
	mu       sync.Mutex
	items    map[string]Item
	order    []string
	capacity int
}

// NewMemoryStore creates an unbounded in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Item)}
}

// NewBoundedMemoryStore creates a store that evicts the oldest half of its
// entries once size exceeds capacity.
func NewBoundedMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{items: make(map[string]Item), capacity: capacity}
}

// Get returns the stored item, or nil when absent.
func (s *MemoryStore) Get(_ context.Context, key string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// Set stores the item, replacing any prior value for the key.
func (s *MemoryStore) Set(_ context.Context, key string, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = item

	if s.capacity > 0 && len(s.items) > s.capacity {
		s.evictOldestHalfLocked()
	}
	return nil
}

// Delete removes the key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
	return nil
}

// Sweep drops entries past expiry.
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, item := range s.items {
		if item.Expired(now) {
			s.removeLocked(key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore) evictOldestHalfLocked() {
	keep := len(s.order) / 2
	evict := s.order[:len(s.order)-keep]
	for _, key := range evict {
		delete(s.items, key)
	}
	s.order = append([]string(nil), s.order[len(s.order)-keep:]...)
}

func (s *MemoryStore) removeLocked(key string) {
	if _, ok := s.items[key]; !ok {
		return
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
