// AngelaMos | 2026
// redis.go

package stackcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/stackrec/internal/stack"
)

// RedisStore keeps each stack as a JSON string under <prefix>stack:<id>
// and tracks the IDs in the <prefix>index set.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(archetypeID string) string {
	return r.prefix + keyPrefix + archetypeID
}

func (r *RedisStore) indexKey() string {
	return r.prefix + "index"
}

func (r *RedisStore) Get(ctx context.Context, archetypeID string) (stack.Stack, error) {
	data, err := r.client.Get(ctx, r.key(archetypeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return stack.Stack{}, notFound(archetypeID)
	}
	if err != nil {
		return stack.Stack{}, fmt.Errorf("redis get: %w", err)
	}

	var s stack.Stack
	if err := json.Unmarshal(data, &s); err != nil {
		return stack.Stack{}, fmt.Errorf("decode stack %s: %w", archetypeID, err)
	}
	return s, nil
}

func (r *RedisStore) Put(ctx context.Context, s stack.Stack) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode stack %s: %w", s.ArchetypeID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(s.ArchetypeID), data, 0)
	pipe.SAdd(ctx, r.indexKey(), s.ArchetypeID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, archetypeID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(archetypeID))
	pipe.SRem(ctx, r.indexKey(), archetypeID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context) ([]stack.Stack, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index: %w", err)
	}
	if len(ids) == 0 {
		return []stack.Stack{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]stack.Stack, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s stack.Stack
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode stack %s: %w", ids[i], err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
