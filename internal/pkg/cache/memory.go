package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultExpiration = 10 * time.Minute
	cleanupInterval   = 30 * time.Minute
)

type memoryCache struct {
	cache       *gocache.Cache
	serviceName string
}

// NewMemoryCache returns a process-local Cache for single-instance
// deployments and tests.
func NewMemoryCache(serviceName string) Cache {
	return &memoryCache{
		cache:       gocache.New(DefaultExpiration, cleanupInterval),
		serviceName: serviceName,
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.cache.Set(key, s, ttl)
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	v, found := m.cache.Get(key)
	if !found {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("cache: unexpected value type %T for %q", v, key)
	}
	return s, nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.serviceName, operation, key)
}
