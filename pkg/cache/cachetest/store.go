// Package cachetest provides an in-memory stand-in for the redis client in
// service tests.
package cachetest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// MemoryStore satisfies the key/value subset of the redis client used by the
// view cache and the extraction cache. TTLs are recorded but never expire.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
	TTLs map[string]time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}, TTLs: map[string]time.Duration{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.TTLs[key] = ttl
	return nil
}

func (m *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *MemoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len returns how many keys are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *MemoryStore) ViewKey(view string, generation int64, scope string) string {
	return fmt.Sprintf("view:%s:%d:%s", view, generation, scope)
}

func (m *MemoryStore) GenerationKey(view string) string {
	return "gen:" + view
}

func (m *MemoryStore) ExtractionKey(kind, digest string) string {
	return "ai_extract:" + kind + ":" + digest
}
