package datastore

import (
	"context"

	"questboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func ListRewardsByQuest(ctx context.Context, db bun.IDB, questID uuid.UUID) ([]*models.Reward, error) {
	var rewards []*models.Reward
	err := db.NewSelect().Model(&rewards).Where("quest_id = ?", questID).OrderExpr("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func FindReward(ctx context.Context, db bun.IDB, questID, rewardID uuid.UUID) (*models.Reward, error) {
	var reward models.Reward
	err := db.NewSelect().Model(&reward).
		Where("id = ?", rewardID).
		Where("quest_id = ?", questID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

func CreateReward(ctx context.Context, db bun.IDB, reward *models.Reward) (*models.Reward, error) {
	_, err := db.NewInsert().Model(reward).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return reward, nil
}

func UpdateRewardColumns(ctx context.Context, db bun.IDB, reward *models.Reward, columns ...string) error {
	_, err := db.NewUpdate().Model(reward).Column(columns...).WherePK().Exec(ctx)
	return err
}

// DeleteReward keeps ledger rows already granted for it.
func DeleteReward(ctx context.Context, db bun.IDB, rewardID uuid.UUID) error {
	_, err := db.NewDelete().Model((*models.Reward)(nil)).Where("id = ?", rewardID).Exec(ctx)
	return err
}

func CountUserRewards(ctx context.Context, db bun.IDB, userID uuid.UUID, rewardIDs []uuid.UUID) (int, error) {
	if len(rewardIDs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(rewardIDs))
	for i, id := range rewardIDs {
		ids[i] = id.String()
	}
	return db.NewSelect().Model((*models.UserReward)(nil)).
		Where("user_id = ?", userID).
		Where("reward_id IN (?)", bun.In(ids)).
		Count(ctx)
}

func InsertUserRewards(ctx context.Context, db bun.IDB, items ...*models.UserReward) error {
	if len(items) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&items).
		Column("id", "user_id", "reward_id", "quest_id", "coins", "points", "level_increase", "granted_at").
		Exec(ctx)
	return err
}
