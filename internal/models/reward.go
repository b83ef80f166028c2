package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Reward struct {
	bun.BaseModel `bun:"table:rewards,alias:rw"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	QuestID       uuid.UUID `bun:"quest_id,notnull,type:uuid" json:"quest_id"`
	Description   string    `bun:"description,notnull" json:"description"`
	Coins         int       `bun:"coins,notnull,default:0" json:"coins"`
	Points        int       `bun:"points,notnull,default:0" json:"points"`
	LevelIncrease int       `bun:"level_increase,notnull,default:0" json:"level_increase"`
}

// UserReward is the ledger row proving a reward was paid out.
type UserReward struct {
	bun.BaseModel `bun:"table:user_rewards,alias:ur"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	RewardID      uuid.UUID `bun:"reward_id,notnull,type:uuid" json:"reward_id"`
	QuestID       uuid.UUID `bun:"quest_id,notnull,type:uuid" json:"quest_id"`
	Coins         int       `bun:"coins,notnull" json:"coins"`
	Points        int       `bun:"points,notnull" json:"points"`
	LevelIncrease int       `bun:"level_increase,notnull" json:"level_increase"`
	GrantedAt     time.Time `bun:"granted_at,notnull" json:"granted_at"`
}

type RewardInput struct {
	Description   string `json:"description" validate:"required"`
	Coins         int    `json:"coins" validate:"gte=0"`
	Points        int    `json:"points" validate:"gte=0"`
	LevelIncrease int    `json:"level_increase" validate:"gte=0"`
}

type RewardPatch struct {
	Description   *string `json:"description" validate:"omitempty,min=1"`
	Coins         *int    `json:"coins" validate:"omitempty,gte=0"`
	Points        *int    `json:"points" validate:"omitempty,gte=0"`
	LevelIncrease *int    `json:"level_increase" validate:"omitempty,gte=0"`
}

func (patch *RewardPatch) Apply(reward *Reward) []string {
	var columns []string
	if patch.Description != nil {
		reward.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.Coins != nil {
		reward.Coins = *patch.Coins
		columns = append(columns, "coins")
	}
	if patch.Points != nil {
		reward.Points = *patch.Points
		columns = append(columns, "points")
	}
	if patch.LevelIncrease != nil {
		reward.LevelIncrease = *patch.LevelIncrease
		columns = append(columns, "level_increase")
	}
	return columns
}

type WalletDelta struct {
	Coins  int `json:"coins"`
	Points int `json:"points"`
	Level  int `json:"level"`
}

func (delta *WalletDelta) Add(reward *Reward) {
	delta.Coins += reward.Coins
	delta.Points += reward.Points
	delta.Level += reward.LevelIncrease
}

type ClaimResult struct {
	Delta   WalletDelta `json:"delta"`
	Rewards []*Reward   `json:"rewards"`
	User    *User       `json:"user"`
}
