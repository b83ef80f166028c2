package services

import (
	"context"
	"fmt"
	"time"

	"questboard/internal/datastore"
	"questboard/internal/models"
	"questboard/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// leaderboardPeriods maps a timeType to its length in days.
var leaderboardPeriods = map[string]int{
	"day":     1,
	"week":    7,
	"month":   30,
	"allTime": 365,
}

type ServiceLeaderboard struct {
	container          *do.Injector
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	serviceConfig      *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, readonlyPostgresDB, cache, readonlyCache, serviceConfig}, nil
}

// LeaderboardDays is the window length in days. The ranking is also cut to that many entries.
func LeaderboardDays(timeType string, timeCount int) (int, error) {
	period, ok := leaderboardPeriods[timeType]
	if !ok {
		return 0, errValidation(fmt.Sprintf("unknown timeType %q", timeType))
	}
	if timeCount < 1 {
		return 0, errValidation("timeCount must be at least 1")
	}
	return period * timeCount, nil
}

// GetLeaderboard ranks users active in the window by points, ties broken by telegram id,
// and places user in the global ranking.
func (service *ServiceLeaderboard) GetLeaderboard(ctx context.Context, user *models.User, timeType string, timeCount int) (*models.LeaderboardResponse, error) {
	if err := Authorize(user, ActionLeaderboardRead); err != nil {
		return nil, err
	}

	days, err := LeaderboardDays(timeType, timeCount)
	if err != nil {
		return nil, err
	}

	callback := func() (*models.LeaderboardResponse, error) {
		since := now().Add(-time.Duration(days) * 24 * time.Hour)
		users, err := datastore.ListLeaderboard(ctx, service.readonlyPostgresDB, since, days)
		if err != nil {
			return nil, err
		}

		ahead, err := datastore.CountUsersAhead(ctx, service.readonlyPostgresDB, user.Points, user.TelegramID)
		if err != nil {
			return nil, err
		}

		response := &models.LeaderboardResponse{
			Users:       make([]*models.LeaderboardItem, 0, len(users)),
			CurrentUser: models.NewLeaderboardItem(user, ahead+1, true),
		}
		for i, u := range users {
			response.Users = append(response.Users, models.NewLeaderboardItem(u, i+1, u.TelegramID == user.TelegramID))
		}
		return response, nil
	}

	ttl := CACHE_TTL_1_MIN
	if seconds, err := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_CACHE_SECONDS, int(CACHE_TTL_1_MIN/time.Second)); err == nil && seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboardByUser(days, user.TelegramID), ttl, callback)
}
