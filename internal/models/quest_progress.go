package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type QuestProgress struct {
	bun.BaseModel    `bun:"table:user_quest_progress,alias:uqp"`
	ID               uuid.UUID   `bun:"id,pk,type:uuid" json:"id"`
	UserID           uuid.UUID   `bun:"user_id,notnull,type:uuid" json:"user_id"`
	QuestID          uuid.UUID   `bun:"quest_id,notnull,type:uuid" json:"quest_id"`
	Status           QuestStatus `bun:"status,notnull" json:"status"`
	Progress         float64     `bun:"progress,notnull,default:0" json:"progress"`
	IsLocked         bool        `bun:"is_locked,notnull,default:false" json:"is_locked"`
	MentorComment    *string     `bun:"mentor_comment" json:"mentor_comment"`
	IsRewardAccepted bool        `bun:"is_reward_accepted,notnull,default:false" json:"is_reward_accepted"`
	StartedAt        *time.Time  `bun:"started_at" json:"started_at"`
	CompletedAt      *time.Time  `bun:"completed_at" json:"completed_at"`
	CreatedAt        time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt        time.Time   `bun:"updated_at,notnull" json:"updated_at"`

	Quest *Quest `bun:"rel:belongs-to,join:quest_id=id" json:"quest,omitempty"`
}

// Advance moves the row to next and stamps the lifecycle timestamps.
func (progress *QuestProgress) Advance(next QuestStatus, now time.Time) {
	switch next {
	case QuestStatusInProgress:
		if progress.StartedAt == nil {
			progress.StartedAt = &now
		}
		progress.IsLocked = false
	case QuestStatusActive:
		progress.IsLocked = false
	case QuestStatusTaskCompleted:
		progress.CompletedAt = &now
		progress.Progress = 1
	}
	progress.Status = next
	progress.UpdatedAt = now
}

type RequestChangesInput struct {
	UserID  int64  `json:"user_id" validate:"required"`
	Comment string `json:"comment" validate:"required"`
}

// ReviewInput targets another user's progress row.
type ReviewInput struct {
	UserID int64 `json:"user_id" validate:"required"`
}
