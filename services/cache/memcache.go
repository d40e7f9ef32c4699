package cache

import (
	stderrors "errors"
	"strings"
	"time"

	"sjsage522/refurbworker/logger"
	"sjsage522/refurbworker/pkg/errors"

	"github.com/bradfitz/gomemcache/memcache"
)

// maxKeyLength is memcached's limit on key size
const maxKeyLength = 250

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string, timeout time.Duration) *MemcacheService {
	client := memcache.New(serverAddr)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &MemcacheService{client: client}
}

// Ping checks that the memcached server is reachable
func (m *MemcacheService) Ping() error {
	if err := m.client.Ping(); err != nil {
		return errors.NewCache("ping", "memcached unreachable", err)
	}
	return nil
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(sanitizeKey(key))
	if err != nil {
		if !stderrors.Is(err, memcache.ErrCacheMiss) {
			logger.ForCache().Warn().Err(err).Str("key", key).Msg("memcache get failed")
		}
		return nil, errors.NewCache(key, "get failed", err)
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        sanitizeKey(key),
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
	if err != nil {
		return errors.NewCache(key, "set failed", err)
	}
	return nil
}

// Delete removes a value from memcache; deleting a missing key is not an error
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(sanitizeKey(key))
	if err != nil && !stderrors.Is(err, memcache.ErrCacheMiss) {
		return errors.NewCache(key, "delete failed", err)
	}
	return nil
}

// sanitizeKey replaces characters memcached rejects and enforces the length limit
func sanitizeKey(key string) string {
	key = strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return '_'
		}
		return r
	}, key)
	if len(key) > maxKeyLength {
		key = key[:maxKeyLength]
	}
	return key
}
