package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"questboard/internal/datastore"
	"questboard/internal/models"
	"questboard/internal/testutil"

	"github.com/google/uuid"
	"github.com/samber/do"
)

// completeQuest walks a fresh quest to TASK_COMPLETED for user.
func completeQuest(t *testing.T, env *testEnv, user, mentor *models.User, questID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	serviceQuest := do.MustInvoke[*ServiceQuest](env.container)
	if _, err := serviceQuest.Accept(ctx, user, questID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := serviceQuest.Submit(ctx, user, questID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := serviceQuest.Complete(ctx, mentor, questID, &models.ReviewInput{UserID: user.TelegramID}); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestClaimReward_PaysOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	testutil.SeedStarterCatalog(t, ctx, env.db, 4)
	quest := testutil.SeedQuest(t, ctx, env.db, "Side quest", time.Now(), nil)
	testutil.SeedReward(t, ctx, env.db, quest.ID, 100, 40, 1)
	testutil.SeedReward(t, ctx, env.db, quest.ID, 50, 10, 0)
	user := env.register(t, 1001, models.RoleAdventurer)
	mentor := env.register(t, 2001, models.RoleAvatar)
	completeQuest(t, env, user, mentor, quest.ID)

	serviceReward := do.MustInvoke[*ServiceReward](env.container)
	result, err := serviceReward.ClaimReward(ctx, user, quest.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	want := models.WalletDelta{Coins: 150, Points: 50, Level: 1}
	if result.Delta != want {
		t.Fatalf("unexpected delta: got=%+v want=%+v", result.Delta, want)
	}
	if result.User.Coins != user.Coins+150 || result.User.Points != user.Points+50 || result.User.Level != user.Level+1 {
		t.Fatalf("unexpected wallet after claim: %+v", result.User)
	}

	_, err = serviceReward.ClaimReward(ctx, user, quest.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on second claim, got %v", err)
	}

	stored, err := datastore.FindUserByID(ctx, env.db, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.Coins != user.Coins+150 {
		t.Fatalf("wallet changed more than once: coins=%d", stored.Coins)
	}

	progress, err := datastore.FindQuestProgress(ctx, env.db, user.ID, quest.ID)
	if err != nil {
		t.Fatalf("find progress: %v", err)
	}
	if !progress.IsRewardAccepted {
		t.Fatalf("expected reward to be marked accepted")
	}
}

func TestClaimReward_ConcurrentClaimsPayOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	testutil.SeedStarterCatalog(t, ctx, env.db, 4)
	quest := testutil.SeedQuest(t, ctx, env.db, "Side quest", time.Now(), nil)
	testutil.SeedReward(t, ctx, env.db, quest.ID, 100, 0, 0)
	user := env.register(t, 1001, models.RoleAdventurer)
	mentor := env.register(t, 2001, models.RoleAvatar)
	completeQuest(t, env, user, mentor, quest.ID)

	serviceReward := do.MustInvoke[*ServiceReward](env.container)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := serviceReward.ClaimReward(ctx, user, quest.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != 4 {
		t.Fatalf("expected 1 success and 4 conflicts, got %d and %d", succeeded, conflicts)
	}

	stored, err := datastore.FindUserByID(ctx, env.db, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.Coins != user.Coins+100 {
		t.Fatalf("expected coins=%d, got %d", user.Coins+100, stored.Coins)
	}
}

func TestClaimReward_NotCompleted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	testutil.SeedStarterCatalog(t, ctx, env.db, 4)
	quest := testutil.SeedQuest(t, ctx, env.db, "Side quest", time.Now(), nil)
	testutil.SeedReward(t, ctx, env.db, quest.ID, 100, 0, 0)
	user := env.register(t, 1001, models.RoleAdventurer)

	serviceReward := do.MustInvoke[*ServiceReward](env.container)
	_, err := serviceReward.ClaimReward(ctx, user, quest.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict before accept, got %v", err)
	}

	serviceQuest := do.MustInvoke[*ServiceQuest](env.container)
	if _, err := serviceQuest.Accept(ctx, user, quest.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err = serviceReward.ClaimReward(ctx, user, quest.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while IN_PROGRESS, got %v", err)
	}
}

func TestClaimReward_QuestWithoutRewards(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	testutil.SeedStarterCatalog(t, ctx, env.db, 4)
	quest := testutil.SeedQuest(t, ctx, env.db, "Side quest", time.Now(), nil)
	user := env.register(t, 1001, models.RoleAdventurer)
	mentor := env.register(t, 2001, models.RoleAvatar)
	completeQuest(t, env, user, mentor, quest.ID)

	serviceReward := do.MustInvoke[*ServiceReward](env.container)
	_, err := serviceReward.ClaimReward(ctx, user, quest.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRewardCatalog_RequiresManager(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	testutil.SeedStarterCatalog(t, ctx, env.db, 4)
	quest := testutil.SeedQuest(t, ctx, env.db, "Side quest", time.Now(), nil)
	player := env.register(t, 1001, models.RoleAdventurer)
	admin := env.register(t, 3001, models.RoleKingdom)

	serviceReward := do.MustInvoke[*ServiceReward](env.container)
	input := &models.RewardInput{Description: "Gold", Coins: 10}

	_, err := serviceReward.CreateReward(ctx, player, quest.ID, input)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	reward, err := serviceReward.CreateReward(ctx, admin, quest.ID, input)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}

	coins := 25
	reward, err = serviceReward.PatchReward(ctx, admin, quest.ID, reward.ID, &models.RewardPatch{Coins: &coins})
	if err != nil {
		t.Fatalf("patch reward: %v", err)
	}
	if reward.Coins != 25 || reward.Description != "Gold" {
		t.Fatalf("unexpected reward after patch: %+v", reward)
	}

	rewards, err := serviceReward.ListRewards(ctx, quest.ID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 1 {
		t.Fatalf("expected 1 reward, got %d", len(rewards))
	}

	if err := serviceReward.DeleteReward(ctx, admin, quest.ID, reward.ID); err != nil {
		t.Fatalf("delete reward: %v", err)
	}
	err = serviceReward.DeleteReward(ctx, admin, quest.ID, reward.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
