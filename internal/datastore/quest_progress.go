package datastore

import (
	"context"

	"questboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func FindQuestProgress(ctx context.Context, db bun.IDB, userID, questID uuid.UUID) (*models.QuestProgress, error) {
	var progress models.QuestProgress
	err := db.NewSelect().Model(&progress).
		Where("user_id = ?", userID).
		Where("quest_id = ?", questID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// InsertQuestProgress names every column so rows keep their own is_locked and
// progress values on dialects that take omitted defaults from the first row.
func InsertQuestProgress(ctx context.Context, db bun.IDB, progress ...*models.QuestProgress) error {
	if len(progress) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&progress).
		Column("id", "user_id", "quest_id", "status", "progress", "is_locked", "mentor_comment",
			"is_reward_accepted", "started_at", "completed_at", "created_at", "updated_at").
		Exec(ctx)
	return err
}

// TransitionQuestProgress writes progress only if the row still holds from.
// It returns false when another writer moved the row first.
func TransitionQuestProgress(ctx context.Context, db bun.IDB, progress *models.QuestProgress, from models.QuestStatus) (bool, error) {
	res, err := db.NewUpdate().Model(progress).
		Column("status", "progress", "is_locked", "mentor_comment", "started_at", "completed_at", "updated_at").
		WherePK().
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkRewardAccepted flips is_reward_accepted once. It returns false if it was already set.
func MarkRewardAccepted(ctx context.Context, db bun.IDB, progress *models.QuestProgress) (bool, error) {
	res, err := db.NewUpdate().Model(progress).
		Set("is_reward_accepted = ?", true).
		Set("updated_at = ?", progress.UpdatedAt).
		WherePK().
		Where("is_reward_accepted = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListUserQuestProgress returns the user's rows newest first with their quest attached.
func ListUserQuestProgress(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]*models.QuestProgress, error) {
	var progress []*models.QuestProgress
	err := db.NewSelect().Model(&progress).
		Relation("Quest").
		Where("uqp.user_id = ?", userID).
		OrderExpr("uqp.created_at DESC, uqp.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return progress, nil
}
