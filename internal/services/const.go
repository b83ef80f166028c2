package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CONFIG_STARTER_QUEST_COUNT       = "STARTER_QUEST_COUNT"
	CONFIG_STARTER_ACHIEVEMENTS      = "STARTER_ACHIEVEMENTS"
	CONFIG_LIFECYCLE_RATE_LIMIT      = "LIFECYCLE_RATE_LIMIT"
	CONFIG_LEADERBOARD_CACHE_SECONDS = "LEADERBOARD_CACHE_SECONDS"

	DEFAULT_STARTER_QUEST_COUNT  = 4
	DEFAULT_STARTER_ACHIEVEMENTS = "Beginner,Novice,Explorer,Warrior"

	LIFECYCLE_RATE_LIMIT_PER_MINUTE = 20

	USERS_DEFAULT_LIMIT  = 50
	QUESTS_DEFAULT_LIMIT = 50
	PAGE_MAX_LIMIT       = 100

	SESSION_TTL = 24 * time.Hour

	CACHE_TTL_1_MIN     = 1 * time.Minute
	CACHE_TTL_5_MINS    = 5 * time.Minute
)

func LockKeyUserQuest(userID uuid.UUID, questID uuid.UUID) string {
	return fmt.Sprintf("lock:user-quest:%s:%s", userID, questID)
}

func LimitKeyUserLifecycle(telegramID int64) string {
	return fmt.Sprintf("limit:user-lifecycle:%d", telegramID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyLeaderboardByUser(days int, telegramID int64) string {
	return fmt.Sprintf("leaderboard_by_user:%d:%d", days, telegramID)
}

func DBKeyQuest(questID uuid.UUID) string {
	return fmt.Sprintf("quest:%s", questID)
}

func now() time.Time {
	return time.Now().UTC()
}
