package handler

import (
	"questboard/internal/models"
	"questboard/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupReward struct {
	container *do.Injector
}

func (gr *groupReward) List(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveValidUser(ctx, gr.container); err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	rewards, err := serviceReward.ListRewards(ctx, questID)
	return abort(c, rewards, err)
}

func (gr *groupReward) Create(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.RewardInput
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	reward, err := serviceReward.CreateReward(ctx, actor, questID, &input)
	return abort(c, reward, err)
}

func (gr *groupReward) Patch(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	rewardID, err := paramUUID(c, "reward_id")
	if err != nil {
		return abort(c, nil, err)
	}

	var patch models.RewardPatch
	if err := bindValid(c, &patch); err != nil {
		return abort(c, nil, err)
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	reward, err := serviceReward.PatchReward(ctx, actor, questID, rewardID, &patch)
	return abort(c, reward, err)
}

func (gr *groupReward) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	rewardID, err := paramUUID(c, "reward_id")
	if err != nil {
		return abort(c, nil, err)
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	if err := serviceReward.DeleteReward(ctx, actor, questID, rewardID); err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message": "Reward deleted successfully",
	}, nil)
}
