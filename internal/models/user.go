package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const DefaultAvatarURL = "https://quests-app-bucket.s3.eu-north-1.amazonaws.com/images/ava6.jpg"

const (
	DefaultUserLevel  = 1
	DefaultUserPoints = 100
	DefaultUserCoins  = 1000
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	TelegramID    int64      `bun:"telegram_id,notnull,unique" json:"telegram_id"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name"`
	LastName      string     `bun:"last_name,notnull" json:"last_name"`
	Username      string     `bun:"username" json:"username"`
	LanguageCode  string     `bun:"language_code" json:"language_code"`
	IsPremium     bool       `bun:"is_premium,notnull,default:false" json:"-"`
	ImageURL      string     `bun:"image_url,notnull" json:"image_url"`
	UserClass     *string    `bun:"user_class" json:"user_class"`
	RoleID        *uuid.UUID `bun:"role_id,type:uuid" json:"-"`
	Level         int        `bun:"level,notnull" json:"level"`
	Points        int        `bun:"points,notnull" json:"points"`
	Coins         int        `bun:"coins,notnull" json:"coins"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" json:"updated_at"`

	Role *Role `bun:"rel:belongs-to,join:role_id=id" json:"role"`

	QuestProgress []*QuestProgress   `bun:"-" json:"quest_progress,omitempty"`
	Achievements  []*UserAchievement `bun:"-" json:"achievements,omitempty"`
}

// RoleName is empty for users who never picked a role.
func (user *User) RoleName() RoleName {
	if user == nil || user.Role == nil {
		return ""
	}
	return user.Role.Name
}

func (user *User) DisplayName() string {
	if user.Username != "" {
		return user.Username
	}
	if user.LastName == "" {
		return user.FirstName
	}
	return user.FirstName + " " + user.LastName
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
	PhotoURL     string `json:"photo_url"`
}

// UserReplace is the body of a full administrative replace.
type UserReplace struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Username  string  `json:"username"`
	UserClass *string `json:"user_class"`
	Level     int     `json:"level" validate:"gte=1"`
	Points    int     `json:"points" validate:"gte=0"`
	Coins     int     `json:"coins" validate:"gte=0"`
}

// UserPatch only touches the fields that are set.
type UserPatch struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1"`
	Username  *string `json:"username"`
	UserClass *string `json:"user_class"`
	Level     *int    `json:"level" validate:"omitempty,gte=1"`
	Points    *int    `json:"points" validate:"omitempty,gte=0"`
	Coins     *int    `json:"coins" validate:"omitempty,gte=0"`
}

func (patch *UserPatch) Empty() bool {
	return patch.FirstName == nil && patch.LastName == nil && patch.Username == nil &&
		patch.UserClass == nil && patch.Level == nil && patch.Points == nil && patch.Coins == nil
}

// Apply copies the set fields onto user and returns the column names it touched.
func (patch *UserPatch) Apply(user *User) []string {
	var columns []string
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
		columns = append(columns, "first_name")
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
		columns = append(columns, "last_name")
	}
	if patch.Username != nil {
		user.Username = *patch.Username
		columns = append(columns, "username")
	}
	if patch.UserClass != nil {
		user.UserClass = patch.UserClass
		columns = append(columns, "user_class")
	}
	if patch.Level != nil {
		user.Level = *patch.Level
		columns = append(columns, "level")
	}
	if patch.Points != nil {
		user.Points = *patch.Points
		columns = append(columns, "points")
	}
	if patch.Coins != nil {
		user.Coins = *patch.Coins
		columns = append(columns, "coins")
	}
	return columns
}

// RoleSelection is the body a player sends to finish registration.
type RoleSelection struct {
	Role      RoleName `json:"role" validate:"required"`
	UserClass *string  `json:"user_class"`
}

type UserCreate struct {
	TelegramID int64    `json:"telegram_id" validate:"required"`
	FirstName  string   `json:"first_name" validate:"required"`
	LastName   string   `json:"last_name"`
	Username   string   `json:"username"`
	Role       RoleName `json:"role" validate:"required"`
	UserClass  *string  `json:"user_class"`
}
