package cache

import (
	"sync"
	"time"
)

var _ Cache = (*TestCache)(nil)

// TestCache is a map backed Cache with a controllable clock.
type TestCache struct {
	mutex   sync.Mutex
	entries map[string]testEntry
	now     func() time.Time
}

type testEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewTestCache() *TestCache {
	return &TestCache{
		entries: make(map[string]testEntry),
		now:     time.Now,
	}
}

// SetClock replaces the clock used for expiry checks.
func (tc *TestCache) SetClock(now func() time.Time) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.now = now
}

func (tc *TestCache) Get(key string) ([]byte, bool) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	e, ok := tc.entries[key]
	if !ok {
		return nil, false
	}
	if !tc.now().Before(e.expiresAt) {
		delete(tc.entries, key)
		return nil, false
	}
	return e.value, true
}

func (tc *TestCache) Set(key string, value []byte, ttl time.Duration) bool {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.entries[key] = testEntry{
		value:     append([]byte(nil), value...),
		expiresAt: tc.now().Add(ttl),
	}
	return true
}

func (tc *TestCache) Clear() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.entries = make(map[string]testEntry)
}

func (tc *TestCache) Len() int {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	return len(tc.entries)
}
