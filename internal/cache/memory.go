package cache

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/bluele/gcache"
)

// MemoryTier is a size-bounded LRU with per-entry expiry.
type MemoryTier struct {
	name      string
	ttl       time.Duration
	clock     gcache.Clock
	store     gcache.Cache
	evictions atomic.Int64
}

// memoryEntry keeps the deadline next to the value since gcache does not
// expose it. A zero expiresAt never expires.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryTier builds an LRU tier holding at most size entries. Entries
// written without an explicit TTL expire after ttl. A nil clock uses real time.
func NewMemoryTier(name string, size int, ttl time.Duration, clock gcache.Clock) *MemoryTier {
	if clock == nil {
		clock = gcache.NewRealClock()
	}
	m := &MemoryTier{name: name, ttl: ttl, clock: clock}

	m.store = gcache.New(size).LRU().
		Clock(clock).
		EvictedFunc(func(key, value interface{}) {
			m.evictions.Add(1)
		}).
		Build()
	return m
}

func (m *MemoryTier) Name() string { return m.name }

// TTL is the default lifetime of entries in this tier.
func (m *MemoryTier) TTL() time.Duration { return m.ttl }

// Get returns a live entry.
func (m *MemoryTier) Get(key string) ([]byte, bool) {
	b, _, ok := m.GetWithTTL(key)
	return b, ok
}

// GetWithTTL returns a live entry and its remaining lifetime, zero when the
// entry never expires.
func (m *MemoryTier) GetWithTTL(key string) ([]byte, time.Duration, bool) {
	v, err := m.store.Get(key)
	if err != nil {
		return nil, 0, false
	}
	e, ok := v.(memoryEntry)
	if !ok {
		return nil, 0, false
	}
	if e.expiresAt.IsZero() {
		return e.value, 0, true
	}
	remaining := e.expiresAt.Sub(m.clock.Now())
	if remaining <= 0 {
		return nil, 0, false
	}
	return e.value, remaining, true
}

// Set stores value for ttl, or the tier default when ttl is not positive.
func (m *MemoryTier) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.ttl
	}
	if ttl <= 0 {
		_ = m.store.Set(key, memoryEntry{value: value})
		return
	}
	_ = m.store.SetWithExpire(key, memoryEntry{value: value, expiresAt: m.clock.Now().Add(ttl)}, ttl)
}

func (m *MemoryTier) Remove(key string) bool {
	return m.store.Remove(key)
}

// RemovePrefix drops every entry whose key starts with prefix and returns
// how many were removed.
func (m *MemoryTier) RemovePrefix(prefix string) int {
	removed := 0
	for _, k := range m.store.Keys(false) {
		key, ok := k.(string)
		if ok && strings.HasPrefix(key, prefix) && m.store.Remove(key) {
			removed++
		}
	}
	return removed
}

// Len counts live entries.
func (m *MemoryTier) Len() int {
	return m.store.Len(true)
}

// Cleanup drops expired entries and returns how many went.
func (m *MemoryTier) Cleanup() int {
	removed := 0
	for _, k := range m.store.Keys(false) {
		if !m.store.Has(k) && m.store.Remove(k) {
			removed++
		}
	}
	return removed
}

func (m *MemoryTier) Purge() {
	m.store.Purge()
}

// Evictions counts entries dropped by the LRU policy or removal.
func (m *MemoryTier) Evictions() int64 {
	return m.evictions.Load()
}
