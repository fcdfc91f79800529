package cache

import "time"

// Cache is a key-value store with per-entry TTL. Entries are refreshed on every
// touch, so an idle entry expires ttl after its last use.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value. A ttl <= 0 falls back to the cache default; if that
	// is also zero the entry never expires.
	Set(key K, value V, ttl time.Duration)

	// GetOrSet returns the live value for key, creating it with create when the
	// key is missing or expired. The entry's expiry is pushed forward either way.
	GetOrSet(key K, create func() V) V

	Delete(key K)

	// Len returns the number of non-expired items currently stored.
	Len() int

	// PurgeExpired scans and removes expired entries.
	PurgeExpired() int
}
