package cache

import "time"

// Cache stores encoded values under string keys until they expire.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) bool
	Clear()
}
