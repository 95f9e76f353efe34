package address

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"digipin/internal/domain"
)

// Redis key prefix for lock hashes; one hash per owner, one field per alias.
const lockKeyPrefix = "digipin:locks:"

// RedisLockStore shares lock flags between client processes of the same
// resident.
type RedisLockStore struct {
	client redis.Cmdable
}

func NewRedisLockStore(client redis.Cmdable) *RedisLockStore {
	return &RedisLockStore{client: client}
}

func lockKey(owner string) string {
	return lockKeyPrefix + owner
}

func (s *RedisLockStore) Load(ctx context.Context, owner string) (map[domain.Alias]bool, error) {
	fields, err := s.client.HGetAll(ctx, lockKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("load locks for %s: %w", owner, err)
	}
	out := make(map[domain.Alias]bool, len(fields))
	for alias, v := range fields {
		if v == "1" {
			out[domain.Alias(alias)] = true
		}
	}
	return out, nil
}

func (s *RedisLockStore) Save(ctx context.Context, owner string, alias domain.Alias, locked bool) error {
	var err error
	if locked {
		err = s.client.HSet(ctx, lockKey(owner), string(alias), "1").Err()
	} else {
		err = s.client.HDel(ctx, lockKey(owner), string(alias)).Err()
	}
	if err != nil {
		return fmt.Errorf("save lock for %s: %w", alias, err)
	}
	return nil
}

func (s *RedisLockStore) Forget(ctx context.Context, owner string, alias domain.Alias) error {
	return s.Save(ctx, owner, alias, false)
}
