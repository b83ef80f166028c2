package datastore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"questboard/internal/datastore"
	"questboard/internal/models"
	"questboard/internal/testutil"

	"github.com/google/uuid"
)

func TestMigrateTwice(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)

	if err := datastore.Migrate(ctx, db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	for _, role := range models.Roles {
		if _, err := datastore.FindRoleByName(ctx, db, role); err != nil {
			t.Fatalf("role %s: %v", role, err)
		}
	}
	count, err := db.NewSelect().Model((*models.Role)(nil)).Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != len(models.Roles) {
		t.Fatalf("roles = %d, want %d", count, len(models.Roles))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedUser(t, ctx, db, 42, models.RoleAdventurer, 100, time.Now())

	dup := &models.User{
		ID:         uuid.New(),
		TelegramID: 42,
		FirstName:  "again",
		ImageURL:   models.DefaultAvatarURL,
		Level:      1,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	_, err := datastore.CreateUser(ctx, db, dup)
	if !datastore.IsUniqueViolation(err) {
		t.Fatalf("duplicate telegram id: %v", err)
	}
	if datastore.IsUniqueViolation(nil) || datastore.IsUniqueViolation(errors.New("boom")) {
		t.Fatal("unrelated errors reported as unique violations")
	}

	_, err = datastore.FindUserByTelegramID(ctx, db, 7)
	if !datastore.IsNotFound(err) {
		t.Fatalf("missing user: %v", err)
	}
}

func TestTransitionQuestProgress(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	now := time.Now().UTC()
	user := testutil.SeedUser(t, ctx, db, 1, models.RoleAdventurer, 100, now)
	quest := testutil.SeedQuest(t, ctx, db, "Scout", now, nil)

	progress := &models.QuestProgress{
		ID:        uuid.New(),
		UserID:    user.ID,
		QuestID:   quest.ID,
		Status:    models.QuestStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := datastore.InsertQuestProgress(ctx, db, progress); err != nil {
		t.Fatal(err)
	}

	again := *progress
	again.ID = uuid.New()
	if err := datastore.InsertQuestProgress(ctx, db, &again); !datastore.IsUniqueViolation(err) {
		t.Fatalf("second row for the same quest: %v", err)
	}

	progress.Advance(models.QuestStatusInProgress, now)
	ok, err := datastore.TransitionQuestProgress(ctx, db, progress, models.QuestStatusActive)
	if err != nil || !ok {
		t.Fatalf("transition = %v, %v", ok, err)
	}

	// a second writer still believing the row is active loses
	stale := *progress
	stale.Advance(models.QuestStatusInProgress, now)
	ok, err = datastore.TransitionQuestProgress(ctx, db, &stale, models.QuestStatusActive)
	if err != nil || ok {
		t.Fatalf("stale transition = %v, %v", ok, err)
	}

	stored, err := datastore.FindQuestProgress(ctx, db, user.ID, quest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.QuestStatusInProgress || stored.StartedAt == nil {
		t.Fatalf("stored = %+v", stored)
	}

	ok, err = datastore.MarkRewardAccepted(ctx, db, stored)
	if err != nil || !ok {
		t.Fatalf("first mark = %v, %v", ok, err)
	}
	ok, err = datastore.MarkRewardAccepted(ctx, db, stored)
	if err != nil || ok {
		t.Fatalf("second mark = %v, %v", ok, err)
	}
}

func TestLeaderboardQueries(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	now := time.Now().UTC()
	testutil.SeedUser(t, ctx, db, 3, models.RoleAdventurer, 300, now)
	testutil.SeedUser(t, ctx, db, 1, models.RoleAdventurer, 300, now)
	testutil.SeedUser(t, ctx, db, 2, models.RoleAvatar, 900, now.Add(-48*time.Hour))
	testutil.SeedUser(t, ctx, db, 4, models.RoleAdventurer, 50, now)

	users, err := datastore.ListLeaderboard(ctx, db, now.Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	var ids []int64
	for _, u := range users {
		ids = append(ids, u.TelegramID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 3 || ids[2] != 4 {
		t.Fatalf("order = %v", ids)
	}

	ahead, err := datastore.CountUsersAhead(ctx, db, 300, 3)
	if err != nil {
		t.Fatal(err)
	}
	// telegram 2 on points, telegram 1 on the tie break
	if ahead != 2 {
		t.Fatalf("ahead = %d", ahead)
	}
}

func TestAddUserWalletAndCascade(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	now := time.Now().UTC()
	user := testutil.SeedUser(t, ctx, db, 9, models.RoleAdventurer, 100, now)
	quest := testutil.SeedQuest(t, ctx, db, "Scout", now, nil)
	reward := testutil.SeedReward(t, ctx, db, quest.ID, 10, 5, 1)

	delta := models.WalletDelta{Coins: 10, Points: 5, Level: 1}
	if err := datastore.AddUserWallet(ctx, db, user.ID, delta, now); err != nil {
		t.Fatal(err)
	}
	if err := datastore.AddUserWallet(ctx, db, user.ID, delta, now); err != nil {
		t.Fatal(err)
	}
	stored, err := datastore.FindUserByID(ctx, db, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Coins != models.DefaultUserCoins+20 || stored.Points != 110 || stored.Level != 3 {
		t.Fatalf("wallet = %d/%d/%d", stored.Coins, stored.Points, stored.Level)
	}

	err = datastore.InsertUserRewards(ctx, db, &models.UserReward{
		ID:        uuid.New(),
		UserID:    user.ID,
		RewardID:  reward.ID,
		QuestID:   quest.ID,
		Coins:     10,
		GrantedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
	paid, err := datastore.CountUserRewards(ctx, db, user.ID, []uuid.UUID{reward.ID})
	if err != nil || paid != 1 {
		t.Fatalf("paid = %d, %v", paid, err)
	}

	if err := datastore.DeleteUserCascade(ctx, db, user.ID); err != nil {
		t.Fatal(err)
	}
	left, err := db.NewSelect().Model((*models.UserReward)(nil)).Count(ctx)
	if err != nil || left != 0 {
		t.Fatalf("ledger rows left = %d, %v", left, err)
	}
	if _, err := datastore.FindUserByID(ctx, db, user.ID); !datastore.IsNotFound(err) {
		t.Fatalf("user still there: %v", err)
	}
}

func TestConfigUpsert(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)

	if _, err := datastore.GetConfigByKey(ctx, db, "STARTER_QUEST_COUNT"); !datastore.IsNotFound(err) {
		t.Fatalf("missing key: %v", err)
	}
	if err := datastore.UpsertConfig(ctx, db, &models.Config{Key: "STARTER_QUEST_COUNT", Value: "4"}); err != nil {
		t.Fatal(err)
	}
	if err := datastore.UpsertConfig(ctx, db, &models.Config{Key: "STARTER_QUEST_COUNT", Value: "6"}); err != nil {
		t.Fatal(err)
	}
	config, err := datastore.GetConfigByKey(ctx, db, "STARTER_QUEST_COUNT")
	if err != nil {
		t.Fatal(err)
	}
	if config.Value != "6" {
		t.Fatalf("value = %q", config.Value)
	}
}

func TestBulkInsertKeepsPerRowValues(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	now := time.Now().UTC()
	user := testutil.SeedUser(t, ctx, db, 5, models.RoleAdventurer, 100, now)
	open := testutil.SeedQuest(t, ctx, db, "Open", now, nil)
	locked := testutil.SeedQuest(t, ctx, db, "Locked", now.Add(time.Second), nil)

	// the first row carries the zero values, the second row does not
	err := datastore.InsertQuestProgress(ctx, db,
		&models.QuestProgress{ID: uuid.New(), UserID: user.ID, QuestID: open.ID, Status: models.QuestStatusActive, CreatedAt: now, UpdatedAt: now},
		&models.QuestProgress{ID: uuid.New(), UserID: user.ID, QuestID: locked.ID, Status: models.QuestStatusBlocked, IsLocked: true, Progress: 0.5, CreatedAt: now, UpdatedAt: now},
	)
	if err != nil {
		t.Fatal(err)
	}
	stored, err := datastore.FindQuestProgress(ctx, db, user.ID, locked.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.IsLocked || stored.Progress != 0.5 {
		t.Fatalf("second row lost its values: locked=%v progress=%v", stored.IsLocked, stored.Progress)
	}

	first := testutil.SeedAchievement(t, ctx, db, "Beginner", now)
	second := testutil.SeedAchievement(t, ctx, db, "Warrior", now.Add(time.Second))
	err = datastore.InsertUserAchievements(ctx, db,
		&models.UserAchievement{ID: uuid.New(), UserID: user.ID, AchievementID: first.ID, Status: models.AchievementStatusActive},
		&models.UserAchievement{ID: uuid.New(), UserID: user.ID, AchievementID: second.ID, Status: models.AchievementStatusBlocked, IsLocked: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	item, err := datastore.FindUserAchievement(ctx, db, user.ID, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !item.IsLocked {
		t.Fatal("second achievement lost is_locked")
	}
}
