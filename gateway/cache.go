package gateway

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Teddy-225/Event-Travel/blobstore"
)

// albumCache remembers resolved album folders by name for a TTL.
type albumCache struct {
	cache *expirable.LRU[string, blobstore.Folder]
}

func newAlbumCache(ttl time.Duration) *albumCache {
	return &albumCache{cache: expirable.NewLRU[string, blobstore.Folder](16, nil, ttl)}
}

func (c *albumCache) Get(name string) (blobstore.Folder, bool) {
	f, ok := c.cache.Get(name)
	if ok {
		albumCacheHitsTotal.Inc()
		return f, true
	}
	albumCacheMissesTotal.Inc()
	return blobstore.Folder{}, false
}

func (c *albumCache) Set(name string, f blobstore.Folder) {
	c.cache.Add(name, f)
}
