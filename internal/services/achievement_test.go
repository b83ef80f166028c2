package services

import (
	"context"
	"errors"
	"testing"

	"questboard/internal/datastore"
	"questboard/internal/models"
	"questboard/internal/testutil"

	"github.com/samber/do"
)

func TestUnlockAchievement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	testutil.SeedStarterCatalog(t, ctx, env.db, 4)
	player := env.register(t, 1001, models.RoleAdventurer)
	mentor := env.register(t, 2001, models.RoleAvatar)

	achievements, err := datastore.FindAchievementsByNames(ctx, env.db, []string{"Beginner", "Warrior"})
	if err != nil {
		t.Fatalf("find achievements: %v", err)
	}
	byName := map[string]*models.Achievement{}
	for _, a := range achievements {
		byName[a.Name] = a
	}

	serviceAchievement := do.MustInvoke[*ServiceAchievement](env.container)
	input := &models.ReviewInput{UserID: player.TelegramID}

	if _, err := serviceAchievement.UnlockAchievement(ctx, player, byName["Warrior"].ID, input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a player, got %v", err)
	}
	if _, err := serviceAchievement.UnlockAchievement(ctx, mentor, byName["Beginner"].ID, input); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for an active achievement, got %v", err)
	}

	item, err := serviceAchievement.UnlockAchievement(ctx, mentor, byName["Warrior"].ID, input)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if item.Status != models.AchievementStatusActive || item.IsLocked {
		t.Fatalf("expected active unlocked achievement, got %s locked=%v", item.Status, item.IsLocked)
	}
	env.notifier.WaitMessages(t, 1)

	if _, err := serviceAchievement.UnlockAchievement(ctx, mentor, byName["Warrior"].ID, input); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second unlock, got %v", err)
	}
}

func TestCreateAchievement_DuplicateName(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	testutil.SeedStarterCatalog(t, ctx, env.db, 4)
	admin := env.register(t, 3001, models.RoleKingdom)

	serviceAchievement := do.MustInvoke[*ServiceAchievement](env.container)
	input := &models.AchievementInput{Name: "Commander", Description: "Finish a team quest"}
	if _, err := serviceAchievement.CreateAchievement(ctx, admin, input); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := serviceAchievement.CreateAchievement(ctx, admin, input); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
