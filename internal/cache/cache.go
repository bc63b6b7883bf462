package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey hashes the parts of a lookup (speaker, template key, rendered text)
// into one key
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "nightfall:v1:" + hex.EncodeToString(hash[:])
}
