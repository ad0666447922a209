package cache

import (
	"os"
	"time"

	"github.com/go-redis/redis"
	"go.uber.org/zap"

	log "github.com/yardimagi/backend-api-go/pkg/logger"
)

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository() *RedisRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("RedisAddr"),
		Password: os.Getenv("RedisPassword"),
		DB:       0,
	})

	return &RedisRepository{client: client}
}

func (repository *RedisRepository) SetKey(key string, value []byte, ttl time.Duration) {
	if err := repository.client.Set(key, value, ttl).Err(); err != nil {
		log.Logger().Warn("could not write cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Get returns the raw cached bytes, or nil on a miss or any redis error. A
// cache failure degrades to an uncached request, never to a request failure.
func (repository *RedisRepository) Get(key string) []byte {
	data, err := repository.client.Get(key).Bytes()
	if err != nil {
		return nil
	}
	return data
}

func (repository *RedisRepository) Delete(key string) error {
	return repository.client.Del(key).Err()
}

func (repository *RedisRepository) Prune() error {
	return repository.client.FlushDB().Err()
}
