package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AchievementStatus string

const (
	AchievementStatusActive  AchievementStatus = "active"
	AchievementStatusBlocked AchievementStatus = "blocked"
)

type Achievement struct {
	bun.BaseModel `bun:"table:achievements,alias:a"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Name          string     `bun:"name,notnull,unique" json:"name"`
	Description   string     `bun:"description,notnull" json:"description"`
	ImageURL      *string    `bun:"image_url" json:"image_url"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     *time.Time `bun:"updated_at" json:"updated_at"`
}

type UserAchievement struct {
	bun.BaseModel `bun:"table:user_achievements,alias:ua"`
	ID            uuid.UUID         `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID         `bun:"user_id,notnull,type:uuid" json:"user_id"`
	AchievementID uuid.UUID         `bun:"achievement_id,notnull,type:uuid" json:"achievement_id"`
	Status        AchievementStatus `bun:"status,notnull" json:"status"`
	IsLocked      bool              `bun:"is_locked,notnull,default:false" json:"is_locked"`

	Achievement *Achievement `bun:"rel:belongs-to,join:achievement_id=id" json:"achievement,omitempty"`
}

type AchievementInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	ImageURL    *string `json:"image_url"`
}
