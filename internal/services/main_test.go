package services

import (
	"context"
	"testing"

	"questboard/internal/models"
	"questboard/internal/testutil"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type testEnv struct {
	db        *bun.DB
	container *do.Injector
	notifier  *testutil.Notifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.DB(t)
	container, notifier := testutil.Container(t, db)
	do.Provide(container, NewServiceConfig)
	do.Provide(container, NewServiceOnboarding)
	do.Provide(container, NewServiceUser)
	do.Provide(container, NewServiceQuestCatalog)
	do.Provide(container, NewServiceQuest)
	do.Provide(container, NewServiceReward)
	do.Provide(container, NewServiceAchievement)
	do.Provide(container, NewServiceLeaderboard)

	return &testEnv{db, container, notifier}
}

// register onboards a player through the same path as POST /user.
func (env *testEnv) register(t *testing.T, telegramID int64, role models.RoleName) *models.User {
	t.Helper()
	serviceUser := do.MustInvoke[*ServiceUser](env.container)
	user, created, err := serviceUser.Register(context.Background(), &models.UserFromAuth{
		ID:        telegramID,
		FirstName: "Player",
		Username:  "Player",
	}, &models.RoleSelection{Role: role})
	if err != nil {
		t.Fatalf("register %d: %v", telegramID, err)
	}
	if !created {
		t.Fatalf("register %d: expected a new user", telegramID)
	}
	return user
}
