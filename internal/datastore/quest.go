package datastore

import (
	"context"

	"questboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func ListQuests(ctx context.Context, db bun.IDB, limit, offset int) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := db.NewSelect().Model(&quests).
		OrderExpr("created_at ASC, id ASC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return quests, nil
}

// ListStarterQuests returns the first n quests of the catalog in creation order.
func ListStarterQuests(ctx context.Context, db bun.IDB, n int) ([]*models.Quest, error) {
	return ListQuests(ctx, db, n, 0)
}

func FindQuestByID(ctx context.Context, db bun.IDB, questID uuid.UUID) (*models.Quest, error) {
	var quest models.Quest
	err := db.NewSelect().Model(&quest).Where("id = ?", questID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &quest, nil
}

func CreateQuest(ctx context.Context, db bun.IDB, quest *models.Quest) (*models.Quest, error) {
	_, err := db.NewInsert().Model(quest).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return quest, nil
}

func UpdateQuestColumns(ctx context.Context, db bun.IDB, quest *models.Quest, columns ...string) error {
	q := db.NewUpdate().Model(quest).WherePK()
	if len(columns) > 0 {
		q = q.Column(columns...)
	}
	_, err := q.Exec(ctx)
	return err
}

func DeleteQuestCascade(ctx context.Context, db bun.IDB, questID uuid.UUID) error {
	if _, err := db.NewDelete().Model((*models.UserReward)(nil)).Where("quest_id = ?", questID).Exec(ctx); err != nil {
		return err
	}
	if _, err := db.NewDelete().Model((*models.Reward)(nil)).Where("quest_id = ?", questID).Exec(ctx); err != nil {
		return err
	}
	if _, err := db.NewDelete().Model((*models.QuestProgress)(nil)).Where("quest_id = ?", questID).Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewDelete().Model((*models.Quest)(nil)).Where("id = ?", questID).Exec(ctx)
	return err
}
