// AngelaMos | 2026
// factory.go

package stackcache

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/stackrec/internal/config"
)

// Open builds the configured backend. The returned close func releases
// resources owned by the store itself; the redis client stays with its owner.
func Open(cfg config.CacheConfig, client *redis.Client) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.CacheBackendRedis:
		if client == nil {
			return nil, nil, errors.New("redis cache backend requires a redis client")
		}
		return NewRedisStore(client, cfg.KeyPrefix), noop, nil

	case config.CacheBackendBadger:
		store, err := OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.CacheBackendMemory:
		return NewMemoryStore(), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
