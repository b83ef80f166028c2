package testutil

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"questboard/internal/datastore"
	"questboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var StarterAchievements = []string{"Beginner", "Novice", "Explorer", "Warrior"}

func SeedQuest(tb testing.TB, ctx context.Context, db bun.IDB, name string, createdAt time.Time, requiredLevel *int) *models.Quest {
	tb.Helper()
	quest := &models.Quest{
		ID:            uuid.New(),
		Name:          name,
		Description:   name + " description",
		RequiredLevel: requiredLevel,
		CreatedAt:     createdAt.UTC(),
	}
	if _, err := datastore.CreateQuest(ctx, db, quest); err != nil {
		tb.Fatalf("seed quest: %v", err)
	}
	return quest
}

func SeedReward(tb testing.TB, ctx context.Context, db bun.IDB, questID uuid.UUID, coins, points, levelIncrease int) *models.Reward {
	tb.Helper()
	reward := &models.Reward{
		ID:            uuid.New(),
		QuestID:       questID,
		Description:   "reward",
		Coins:         coins,
		Points:        points,
		LevelIncrease: levelIncrease,
	}
	if _, err := datastore.CreateReward(ctx, db, reward); err != nil {
		tb.Fatalf("seed reward: %v", err)
	}
	return reward
}

func SeedAchievement(tb testing.TB, ctx context.Context, db bun.IDB, name string, createdAt time.Time) *models.Achievement {
	tb.Helper()
	achievement := &models.Achievement{
		ID:          uuid.New(),
		Name:        name,
		Description: name + " description",
		CreatedAt:   createdAt.UTC(),
	}
	if _, err := datastore.CreateAchievement(ctx, db, achievement); err != nil {
		tb.Fatalf("seed achievement: %v", err)
	}
	return achievement
}

// SeedStarterCatalog creates quests in creation order and the default starter achievements.
func SeedStarterCatalog(tb testing.TB, ctx context.Context, db bun.IDB, quests int) []*models.Quest {
	tb.Helper()
	base := time.Now().UTC().Add(-time.Hour)
	seeded := make([]*models.Quest, 0, quests)
	for i := 0; i < quests; i++ {
		seeded = append(seeded, SeedQuest(tb, ctx, db, fmt.Sprintf("Quest %d", i+1), base.Add(time.Duration(i)*time.Second), nil))
	}
	for i, name := range StarterAchievements {
		SeedAchievement(tb, ctx, db, name, base.Add(time.Duration(i)*time.Second))
	}
	return seeded
}

// SeedUser inserts a user directly, skipping onboarding.
func SeedUser(tb testing.TB, ctx context.Context, db bun.IDB, telegramID int64, role models.RoleName, points int, updatedAt time.Time) *models.User {
	tb.Helper()
	r, err := datastore.FindRoleByName(ctx, db, role)
	if err != nil {
		tb.Fatalf("find role %s: %v", role, err)
	}
	user := &models.User{
		ID:         uuid.New(),
		TelegramID: telegramID,
		FirstName:  fmt.Sprintf("user%d", telegramID),
		ImageURL:   models.DefaultAvatarURL,
		RoleID:     &r.ID,
		Role:       r,
		Level:      models.DefaultUserLevel,
		Points:     points,
		Coins:      models.DefaultUserCoins,
		CreatedAt:  updatedAt.UTC(),
		UpdatedAt:  updatedAt.UTC(),
	}
	if _, err := datastore.CreateUser(ctx, db, user); err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return user
}

// SignInitData signs values the way telegram signs mini app launch parameters.
func SignInitData(token string, values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	signed := url.Values{}
	for k := range values {
		signed.Set(k, values.Get(k))
	}
	signed.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return signed.Encode()
}

// InitData builds signed init data for a telegram user authenticated at authDate.
func InitData(token string, telegramID int64, firstName string, authDate time.Time) string {
	return SignInitData(token, url.Values{
		"auth_date": {fmt.Sprint(authDate.Unix())},
		"query_id":  {"AAHdF6IQAAAAAN0XohDhrOrc"},
		"user":      {fmt.Sprintf(`{"id":%d,"first_name":%q,"last_name":"","username":"user%d","language_code":"en"}`, telegramID, firstName, telegramID)},
	})
}
