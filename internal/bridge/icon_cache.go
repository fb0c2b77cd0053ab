package bridge

import (
	"context"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedIcon is one fetched application icon
type CachedIcon struct {
	Data        []byte
	ContentType string
	FetchedAt   time.Time
}

// IconCache keeps recently fetched icons keyed by device and app
type IconCache struct {
	cache      *lru.Cache[string, *CachedIcon]
	expiration time.Duration
	now        func() time.Time
	mutex      sync.Mutex
	hits       int
	misses     int
}

// NewIconCache creates a new icon cache
func NewIconCache(maxSize int, expiration time.Duration) *IconCache {
	if maxSize <= 0 {
		maxSize = 128
	}
	if expiration <= 0 {
		expiration = 10 * time.Minute
	}

	cache, _ := lru.New[string, *CachedIcon](maxSize)
	return &IconCache{
		cache:      cache,
		expiration: expiration,
		now:        time.Now,
	}
}

func iconKey(deviceID, appID string) string {
	return deviceID + "/" + appID
}

// Get returns a cached icon that has not expired
func (ic *IconCache) Get(deviceID, appID string) (*CachedIcon, bool) {
	key := iconKey(deviceID, appID)

	icon, found := ic.cache.Get(key)
	if found && ic.now().Sub(icon.FetchedAt) > ic.expiration {
		ic.cache.Remove(key)
		found = false
	}

	ic.mutex.Lock()
	if found {
		ic.hits++
	} else {
		ic.misses++
	}
	ic.mutex.Unlock()

	return icon, found
}

// Store caches data as the icon for deviceID/appID
func (ic *IconCache) Store(deviceID, appID string, data []byte) *CachedIcon {
	icon := &CachedIcon{
		Data:        data,
		ContentType: http.DetectContentType(data),
		FetchedAt:   ic.now(),
	}
	ic.cache.Add(iconKey(deviceID, appID), icon)
	return icon
}

// Fetch returns the cached icon or calls fetch and caches its result
func (ic *IconCache) Fetch(ctx context.Context, deviceID, appID string, fetch func(context.Context) ([]byte, error)) (*CachedIcon, error) {
	if icon, found := ic.Get(deviceID, appID); found {
		return icon, nil
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ic.Store(deviceID, appID, data), nil
}

// Purge drops every cached icon
func (ic *IconCache) Purge() {
	ic.cache.Purge()
}

// GetStats returns cache statistics
func (ic *IconCache) GetStats() map[string]interface{} {
	ic.mutex.Lock()
	defer ic.mutex.Unlock()

	return map[string]interface{}{
		"entries":    ic.cache.Len(),
		"hits":       ic.hits,
		"misses":     ic.misses,
		"expiration": ic.expiration.String(),
	}
}
