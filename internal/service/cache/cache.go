package cache

import "time"

// BytesCache stores serialized vendor payloads with a TTL. Both the
// in-process map and Redis satisfy it, so caching policy stays in the
// market data layer.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
