package handler

import (
	"fmt"
	"net/http"

	"questboard/internal/datastore/redis_store"
	"questboard/internal/interfaces"
	"questboard/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotencyReplayed = "Idempotent-Replayed"

	ctxKeyIdempotency = "idempotency"
)

type idempotencyTarget struct {
	scope string
	key   string
}

// Idempotent replays the stored response when a request repeats its Idempotency-Key.
// Only successful responses are stored, for a day, scoped to the user and the route.
// A rejected request can be retried under the same key once its cause is gone.
func Idempotent(store interfaces.IdempotencyStore, log *logger.Logger) echo.MiddlewareFunc {
	dump := middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return c.Get(ctxKeyIdempotency) == nil
		},
		Handler: func(c echo.Context, _ []byte, resBody []byte) {
			target, ok := c.Get(ctxKeyIdempotency).(*idempotencyTarget)
			status := c.Response().Status
			if !ok || status < http.StatusOK || status >= http.StatusMultipleChoices {
				return
			}
			err := store.Save(c.Request().Context(), target.scope, target.key, &redis_store.IdempotentResponse{
				Status:      status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        resBody,
			})
			if err != nil {
				log.Warn("save idempotent response", "key", target.key, "error", err)
			}
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		dumped := dump(next)
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderIdempotencyKey)
			if key == "" {
				return next(c)
			}
			userAuth, err := ResolveAuth(c.Request().Context())
			if err != nil {
				return next(c)
			}

			target := &idempotencyTarget{
				scope: fmt.Sprintf("%d:%s:%s", userAuth.ID, c.Request().Method, c.Request().URL.Path),
				key:   key,
			}
			stored, err := store.Get(c.Request().Context(), target.scope, target.key)
			if err != nil {
				log.Warn("load idempotent response", "key", key, "error", err)
				return next(c)
			}
			if stored != nil {
				c.Response().Header().Set(HeaderIdempotencyReplayed, "true")
				return c.Blob(stored.Status, stored.ContentType, stored.Body)
			}

			c.Set(ctxKeyIdempotency, target)
			return dumped(c)
		}
	}
}
