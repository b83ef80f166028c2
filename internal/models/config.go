package models

import (
	"github.com/uptrace/bun"
)

// Config is one runtime setting, e.g. STARTER_QUEST_COUNT, STARTER_ACHIEVEMENTS,
// LIFECYCLE_RATE_LIMIT or LEADERBOARD_CACHE_SECONDS. Values are plain strings.
type Config struct {
	bun.BaseModel `bun:"table:config"`
	Key           string `bun:"key,pk" json:"key"`
	Value         string `bun:"value" json:"value"`
}
