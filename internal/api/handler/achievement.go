package handler

import (
	"questboard/internal/models"
	"questboard/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAchievement struct {
	container *do.Injector
}

func (gr *groupAchievement) List(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveValidUser(ctx, gr.container); err != nil {
		return abort(c, nil, err)
	}

	serviceAchievement, err := do.Invoke[*services.ServiceAchievement](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	achievements, err := serviceAchievement.ListAchievements(ctx)
	return abort(c, achievements, err)
}

func (gr *groupAchievement) Create(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.AchievementInput
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceAchievement, err := do.Invoke[*services.ServiceAchievement](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	achievement, err := serviceAchievement.CreateAchievement(ctx, actor, &input)
	return abort(c, achievement, err)
}

func (gr *groupAchievement) Mine(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	serviceAchievement, err := do.Invoke[*services.ServiceAchievement](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	achievements, err := serviceAchievement.ListUserAchievements(ctx, user)
	return abort(c, achievements, err)
}

func (gr *groupAchievement) Unlock(c echo.Context) error {
	ctx := c.Request().Context()

	reviewer, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	achievementID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.ReviewInput
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceAchievement, err := do.Invoke[*services.ServiceAchievement](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	achievement, err := serviceAchievement.UnlockAchievement(ctx, reviewer, achievementID, &input)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message":     "Achievement unlocked",
		"achievement": achievement,
	}, nil)
}
