package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching retrieval responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key for a retrieval request. kind
// separates the key spaces of the different retrieval services (search,
// page, wiki) so a query and a URL with the same text never collide.
func Key(kind, value string) string {
	hash := sha256.Sum256([]byte(value))
	return "briefly:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}
