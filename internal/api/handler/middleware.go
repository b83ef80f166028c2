package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"questboard/internal/interfaces"
	"questboard/internal/models"
	"questboard/internal/pkg/limiter"
	"questboard/internal/pkg/logger"
	"questboard/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthUser ctxKey = "AUTH_USER"

type InitDataVerifier interface {
	ValidateInitData(dataStr string) (*models.UserFromAuth, error)
}

type TokenVerifier interface {
	Validate(token string) (*models.UserFromAuth, error)
}

// Authn accepts "tma <init data>" and "Bearer <session token>".
// Authn will NOT terminate a request without credentials; handlers resolve the user.
func Authn(initData InitDataVerifier, tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			scheme, credentials, found := strings.Cut(strings.TrimSpace(header), " ")
			credentials = strings.TrimSpace(credentials)
			if !found || credentials == "" {
				return next(c)
			}

			var (
				user *models.UserFromAuth
				err  error
			)
			switch strings.ToLower(scheme) {
			case "tma":
				user, err = initData.ValidateInitData(credentials)
			case "bearer":
				user, err = tokens.Validate(credentials)
			default:
				return next(c)
			}
			if err != nil {
				// although it's a client error, we don't want to detailed information
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := context.WithValue(c.Request().Context(), ctxKeyAuthUser, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// ResolveAuth returns the verified telegram identity of the request.
func ResolveAuth(ctx context.Context) (*models.UserFromAuth, error) {
	userAuth, ok := ctx.Value(ctxKeyAuthUser).(*models.UserFromAuth)
	if !ok {
		return nil, fmt.Errorf("%w: missing session", services.ErrAuthentication)
	}
	return userAuth, nil
}

// ResolveValidUser returns the registered user behind the request.
func ResolveValidUser(ctx context.Context, container *do.Injector) (*models.User, error) {
	userAuth, err := ResolveAuth(ctx)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return serviceUser.FindUser(ctx, userAuth)
}

// RateLimit caps quest lifecycle calls per telegram user.
func RateLimit(container *do.Injector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userAuth, err := ResolveAuth(c.Request().Context())
			if err != nil {
				return next(c)
			}

			l, err := do.Invoke[interfaces.Limiter](container)
			if err != nil {
				return abort(c, nil, err)
			}
			serviceConfig, err := do.Invoke[*services.ServiceConfig](container)
			if err != nil {
				return abort(c, nil, err)
			}

			ctx := c.Request().Context()
			perMinute, _ := serviceConfig.GetIntConfig(ctx, services.CONFIG_LIFECYCLE_RATE_LIMIT, services.LIFECYCLE_RATE_LIMIT_PER_MINUTE)
			err = l.Allow(ctx, services.LimitKeyUserLifecycle(userAuth.ID), redis_rate.PerMinute(perMinute))
			if errors.Is(err, limiter.ErrRateLimited) {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("too many requests, slow down"), errorx.RateLimiting), -1)
				return nil
			}
			if err != nil {
				log := do.MustInvoke[*logger.Logger](container)
				log.Warn("rate limiter unavailable", "error", err)
			}

			return next(c)
		}
	}
}
