package interfaces

import (
	"context"

	"questboard/internal/datastore/redis_store"

	"github.com/go-redis/redis_rate/v10"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Notifier pushes a text message to a telegram chat.
type Notifier interface {
	Notify(chatID int64, text string) error
}

type ProfilePhotos interface {
	ProfilePhotoURL(telegramID int64) (string, error)
}

type IdempotencyStore interface {
	Get(ctx context.Context, scope string, key string) (*redis_store.IdempotentResponse, error)
	Save(ctx context.Context, scope string, key string, v *redis_store.IdempotentResponse) error
}
