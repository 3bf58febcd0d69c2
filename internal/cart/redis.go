package cart

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Carts are kept for a month of inactivity, then expire.
const cartTTL = 30 * 24 * time.Hour

// RedisStorage holds one cart under one key, the same shape the browser
// local-storage key had.
type RedisStorage struct {
	RDB *redis.Client
	Key string
}

func (s *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	val, err := s.RDB.Get(ctx, s.Key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *RedisStorage) Save(ctx context.Context, data []byte) error {
	return s.RDB.Set(ctx, s.Key, data, cartTTL).Err()
}

func (s *RedisStorage) Delete(ctx context.Context) error {
	return s.RDB.Del(ctx, s.Key).Err()
}
