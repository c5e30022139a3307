// internal/storage/redis.go
package storage

import (
	"context"
	"errors"

	"loanflow/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// redisBackend keeps the whole state blob in one Redis string key.
type redisBackend struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore returns a Store persisting into the given Redis client under
// the namespace key.
func NewRedisStore(client *redis.Client, namespace string, log logger.Logger) Store {
	return newBlobStore(&redisBackend{
		client:    client,
		namespace: namespace,
	}, log.WithFields(map[string]interface{}{"store": "redis", "namespace": namespace}))
}

func (b *redisBackend) load(ctx context.Context) ([]byte, error) {
	raw, err := b.client.Get(ctx, b.namespace).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

func (b *redisBackend) save(ctx context.Context, data []byte) error {
	// No TTL: the blob lives until ClearAllData.
	return b.client.Set(ctx, b.namespace, data, 0).Err()
}

func (b *redisBackend) clear(ctx context.Context) error {
	return b.client.Del(ctx, b.namespace).Err()
}
