package handler

import (
	"time"

	"questboard/internal/models"
	"questboard/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupUser struct {
	container *do.Injector
}

// Me returns the registered user with a fresh session token.
func (gr *groupUser) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	user, err = serviceUser.Profile(ctx, user)
	if err != nil {
		return abort(c, nil, err)
	}

	token, err := gr.token(user)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"redirect": "/profile",
		"message":  "User already exists, returning user data from database",
		"user":     user,
		"token":    token,
	}, nil)
}

// Register completes registration with the chosen role.
func (gr *groupUser) Register(c echo.Context) error {
	ctx := c.Request().Context()

	userAuth, err := ResolveAuth(ctx)
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.RoleSelection
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	user, created, err := serviceUser.Register(ctx, userAuth, &input)
	if err != nil {
		return abort(c, nil, err)
	}

	user, err = serviceUser.Profile(ctx, user)
	if err != nil {
		return abort(c, nil, err)
	}

	token, err := gr.token(user)
	if err != nil {
		return abort(c, nil, err)
	}

	message := "User already exists, preventing multiple user creation!"
	if created {
		message = "User created successfully with selected role. Initial quests have been assigned."
	}
	return abort(c, map[string]interface{}{
		"redirect": "/profile",
		"message":  message,
		"user":     user,
		"token":    token,
	}, nil)
}

func (gr *groupUser) token(user *models.User) (string, error) {
	authentication, err := do.Invoke[*services.Authentication](gr.container)
	if err != nil {
		return "", err
	}
	return authentication.CreateToken(user, time.Now().UTC())
}

func (gr *groupUser) List(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	page, limit := pageParams(c)
	users, err := serviceUser.ListUsers(ctx, actor, page, limit)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"users": users,
	}, nil)
}

func (gr *groupUser) Create(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.UserCreate
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	user, err := serviceUser.CreateUser(ctx, actor, &input)
	return abort(c, user, err)
}

func (gr *groupUser) Show(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	telegramID, err := paramTelegramID(c)
	if err != nil {
		return abort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	user, err := serviceUser.GetUser(ctx, actor, telegramID)
	return abort(c, user, err)
}

func (gr *groupUser) Replace(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	telegramID, err := paramTelegramID(c)
	if err != nil {
		return abort(c, nil, err)
	}

	var input models.UserReplace
	if err := bindValid(c, &input); err != nil {
		return abort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	user, err := serviceUser.ReplaceUser(ctx, actor, telegramID, &input)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message": "User information successfully replaced",
		"user":    user,
	}, nil)
}

func (gr *groupUser) Patch(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	telegramID, err := paramTelegramID(c)
	if err != nil {
		return abort(c, nil, err)
	}

	var patch models.UserPatch
	if err := bindValid(c, &patch); err != nil {
		return abort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	user, err := serviceUser.PatchUser(ctx, actor, telegramID, &patch)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message": "User information successfully updated",
		"user":    user,
	}, nil)
}

func (gr *groupUser) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	telegramID, err := paramTelegramID(c)
	if err != nil {
		return abort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return abort(c, nil, err)
	}

	err = serviceUser.DeleteUser(ctx, actor, telegramID)
	if err != nil {
		return abort(c, nil, err)
	}

	return abort(c, map[string]interface{}{
		"message": "User deleted successfully",
	}, nil)
}
