package redis_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const IDEMPOTENCY_TTL = 24 * time.Hour

// IdempotentResponse is what a replayed request gets back.
type IdempotentResponse struct {
	Status      int    `msgpack:"status"`
	ContentType string `msgpack:"content_type"`
	Body        []byte `msgpack:"body"`
}

func dbKeyIdempotency(scope string, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", scope, key)
}

// GetIdempotentResponse returns nil, nil when nothing is stored under key.
func GetIdempotentResponse(ctx context.Context, cmd redis.Cmdable, scope string, key string) (*IdempotentResponse, error) {
	b, err := cmd.Get(ctx, dbKeyIdempotency(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var v IdempotentResponse
	err = msgpack.Unmarshal(b, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveIdempotentResponse stores v unless another request already did.
func SaveIdempotentResponse(ctx context.Context, cmd redis.Cmdable, scope string, key string, v *IdempotentResponse) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	return cmd.SetNX(ctx, dbKeyIdempotency(scope, key), b, IDEMPOTENCY_TTL).Err()
}

// IdempotencyStore binds the idempotency helpers to one redis client.
type IdempotencyStore struct {
	cmd redis.Cmdable
}

func NewIdempotencyStore(cmd redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{cmd}
}

func (store *IdempotencyStore) Get(ctx context.Context, scope string, key string) (*IdempotentResponse, error) {
	return GetIdempotentResponse(ctx, store.cmd, scope, key)
}

func (store *IdempotencyStore) Save(ctx context.Context, scope string, key string, v *IdempotentResponse) error {
	return SaveIdempotentResponse(ctx, store.cmd, scope, key, v)
}
