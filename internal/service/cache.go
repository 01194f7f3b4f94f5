package service

import (
    "fmt"
    "time"

    lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// cacheKeyAll is the cache key for the unfiltered seat list.
const cacheKeyAll = "all"

// zoneCacheKey builds the cache key for one zone's seat list.
func zoneCacheKey(zoneID uint64) string { return fmt.Sprintf("zone:%d", zoneID) }

// StatusCache is the bounded read-through cache for computed seat
// status lists.  Entries are keyed by filter ("all" or "zone:<id>"),
// expire after a short TTL and are evicted oldest-first once the key
// cap is reached.  Any write that can change a status must
// invalidate synchronously before returning.
type StatusCache struct {
    lru *lru.LRU[string, []SeatAvailability]
}

// NewStatusCache builds a cache holding at most maxKeys entries with
// the given TTL.
func NewStatusCache(maxKeys int, ttl time.Duration) *StatusCache {
    if maxKeys <= 0 {
        maxKeys = 128
    }
    return &StatusCache{lru: lru.NewLRU[string, []SeatAvailability](maxKeys, nil, ttl)}
}

// Get returns the cached list for a filter key, if present and fresh.
func (c *StatusCache) Get(key string) ([]SeatAvailability, bool) {
    return c.lru.Get(key)
}

// Set stores the computed list for a filter key.
func (c *StatusCache) Set(key string, statuses []SeatAvailability) {
    c.lru.Add(key, statuses)
}

// InvalidateZone drops the cached list of the given zone together with
// the unfiltered list, which also contains the zone's seats.
func (c *StatusCache) InvalidateZone(zoneID uint64) {
    c.lru.Remove(zoneCacheKey(zoneID))
    c.lru.Remove(cacheKeyAll)
}

// Purge drops every cached entry.  Used when a bulk operation (the
// expiry sweep) may have touched seats across many zones.
func (c *StatusCache) Purge() {
    c.lru.Purge()
}
