package handler

import (
	"fmt"
	"strconv"

	"questboard/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	timeType := c.QueryParam("timeType")
	timeCount := 1
	if raw := c.QueryParam("timeCount"); raw != "" {
		timeCount, err = strconv.Atoi(raw)
		if err != nil {
			return abort(c, nil, fmt.Errorf("%w: invalid timeCount", services.ErrValidation))
		}
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	leaderboard, err := serviceLeaderboard.GetLeaderboard(ctx, user, timeType, timeCount)
	return abort(c, leaderboard, err)
}
