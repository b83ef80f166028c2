package handler

import (
	"questboard/internal/models"
	"questboard/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupQuest struct {
	container *do.Injector
}

func (gr *groupQuest) List(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveValidUser(ctx, gr.container); err != nil {
		return abort(c, nil, err)
	}

	serviceQuestCatalog, err := do.Invoke[*services.ServiceQuestCatalog](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	page, limit := pageParams(c)
	quests, err := serviceQuestCatalog.ListQuests(ctx, page, limit)
	return abort(c, quests, err)
}

func (gr *groupQuest) Show(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveValidUser(ctx, gr.container); err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	serviceQuestCatalog, err := do.Invoke[*services.ServiceQuestCatalog](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	quest, err := serviceQuestCatalog.GetQuest(ctx, questID)
	return abort(c, quest, err)
}

func (gr *groupQuest) Create(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.QuestInput
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceQuestCatalog, err := do.Invoke[*services.ServiceQuestCatalog](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	quest, err := serviceQuestCatalog.CreateQuest(ctx, actor, &input)
	return abort(c, quest, err)
}

func (gr *groupQuest) Replace(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.QuestInput
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceQuestCatalog, err := do.Invoke[*services.ServiceQuestCatalog](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	quest, err := serviceQuestCatalog.ReplaceQuest(ctx, actor, questID, &input)
	return abort(c, quest, err)
}

func (gr *groupQuest) Patch(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	var patch models.QuestPatch
	if err := bindValid(c, &patch); err != nil {
		return abort(c, nil, err)
	}

	serviceQuestCatalog, err := do.Invoke[*services.ServiceQuestCatalog](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	quest, err := serviceQuestCatalog.PatchQuest(ctx, actor, questID, &patch)
	return abort(c, quest, err)
}

func (gr *groupQuest) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	serviceQuestCatalog, err := do.Invoke[*services.ServiceQuestCatalog](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	if err := serviceQuestCatalog.DeleteQuest(ctx, actor, questID); err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message": "Quest deleted successfully",
	}, nil)
}

func (gr *groupQuest) Accept(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	serviceQuest, err := do.Invoke[*services.ServiceQuest](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	progress, err := serviceQuest.Accept(ctx, user, questID)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message":  "Quest accepted",
		"progress": progress,
	}, nil)
}

func (gr *groupQuest) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	serviceQuest, err := do.Invoke[*services.ServiceQuest](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	progress, err := serviceQuest.Submit(ctx, user, questID)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message":  "Quest submitted for review",
		"progress": progress,
	}, nil)
}

func (gr *groupQuest) RequestChanges(c echo.Context) error {
	ctx := c.Request().Context()

	reviewer, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.RequestChangesInput
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceQuest, err := do.Invoke[*services.ServiceQuest](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	progress, err := serviceQuest.RequestChanges(ctx, reviewer, questID, &input)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message":  "Changes requested",
		"progress": progress,
	}, nil)
}

func (gr *groupQuest) Complete(c echo.Context) error {
	ctx := c.Request().Context()

	reviewer, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.ReviewInput
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceQuest, err := do.Invoke[*services.ServiceQuest](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	progress, err := serviceQuest.Complete(ctx, reviewer, questID, &input)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message":  "Quest completed",
		"progress": progress,
	}, nil)
}

func (gr *groupQuest) Unlock(c echo.Context) error {
	ctx := c.Request().Context()

	reviewer, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	questID, err := paramUUID(c, "id")
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.ReviewInput
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceQuest, err := do.Invoke[*services.ServiceQuest](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	progress, err := serviceQuest.Unlock(ctx, reviewer, questID, &input)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message":  "Quest unlocked",
		"progress": progress,
	}, nil)
}

func (gr *groupQuest) AcceptReward(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
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

	result, err := serviceReward.ClaimReward(ctx, user, questID)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message": "Reward accepted",
		"coins":   result.Delta.Coins,
		"points":  result.Delta.Points,
		"level":   result.Delta.Level,
		"rewards": result.Rewards,
		"user":    result.User,
	}, nil)
}

// Mine lists the caller's quest progress rows.
func (gr *groupQuest) Mine(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	serviceQuest, err := do.Invoke[*services.ServiceQuest](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	quests, err := serviceQuest.ListUserQuests(ctx, user)
	return abort(c, quests, err)
}
