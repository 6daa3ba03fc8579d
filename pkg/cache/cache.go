// Package cache stores serialized preview lookups keyed by normalized query.
// Backends: an in-process map (Memory), Redis (Redis) and SQLite (db.DB).
package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a byte oriented key/value store with per entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type memEntry struct {
	value   []byte
	expires time.Time
}

// Memory is a process local Cache. The zero value is ready for use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// Get returns a copy of the stored value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !e.expires.IsZero() && !m.clock().Before(e.expires) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores value under key. A non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]memEntry)
	}
	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.clock().Add(ttl)
	}
	m.entries[key] = e
	return nil
}
