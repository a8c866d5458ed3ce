package memcache

import (
	"sync"
	"time"
)

const sweepInterval = time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a small in-process map with per-entry expiry. Expired entries
// are dropped on read and swept from Set at most once per sweepInterval.
type TTLCache[V any] struct {
	mu        sync.RWMutex
	data      map[string]entry[V]
	now       func() time.Time
	lastSweep time.Time
}

func NewTTLCache[V any]() *TTLCache[V] {
	return &TTLCache[V]{
		data: make(map[string]entry[V]),
		now:  time.Now,
	}
}

func (s *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > sweepInterval {
		for k, e := range s.data {
			if now.After(e.expiresAt) {
				delete(s.data, k)
			}
		}
		s.lastSweep = now
	}

	s.data[key] = entry[V]{
		value:     value,
		expiresAt: now.Add(ttl),
	}
}

func (s *TTLCache[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

func (s *TTLCache[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
