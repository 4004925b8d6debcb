package cache

import (
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

var _ Cache = (*FreeCache)(nil)

// freecache raises anything smaller to 512KB
const minSize = 512 * 1024

type FreeCache struct {
	mainCache *freecache.Cache
}

// NewFreeCache creates a cache holding up to size bytes.
func NewFreeCache(size int) *FreeCache {
	if size < minSize {
		size = minSize
	}
	return &FreeCache{
		mainCache: freecache.NewCache(size),
	}
}

func (fc *FreeCache) Get(key string) ([]byte, bool) {
	val, err := fc.mainCache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores the value, a ttl under one second is rounded up to one second.
func (fc *FreeCache) Set(key string, value []byte, ttl time.Duration) bool {
	expireSeconds := int(ttl / time.Second)
	if expireSeconds < 1 {
		expireSeconds = 1
	}
	if err := fc.mainCache.Set([]byte(key), value, expireSeconds); err != nil {
		log.Warnf("cache set [%s]: %s", key, err)
		return false
	}
	return true
}

func (fc *FreeCache) Clear() {
	fc.mainCache.Clear()
}

func (fc *FreeCache) EntryCount() int64 {
	return fc.mainCache.EntryCount()
}
