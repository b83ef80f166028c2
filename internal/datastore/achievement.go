package datastore

import (
	"context"

	"questboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func ListAchievements(ctx context.Context, db bun.IDB) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	err := db.NewSelect().Model(&achievements).OrderExpr("created_at ASC, id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

func FindAchievementByID(ctx context.Context, db bun.IDB, achievementID uuid.UUID) (*models.Achievement, error) {
	var achievement models.Achievement
	err := db.NewSelect().Model(&achievement).Where("id = ?", achievementID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

// FindAchievementsByNames returns what exists of names, in no particular order.
func FindAchievementsByNames(ctx context.Context, db bun.IDB, names []string) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	if len(names) == 0 {
		return achievements, nil
	}
	err := db.NewSelect().Model(&achievements).Where("name IN (?)", bun.In(names)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

func CreateAchievement(ctx context.Context, db bun.IDB, achievement *models.Achievement) (*models.Achievement, error) {
	_, err := db.NewInsert().Model(achievement).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return achievement, nil
}

func InsertUserAchievements(ctx context.Context, db bun.IDB, items ...*models.UserAchievement) error {
	if len(items) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&items).
		Column("id", "user_id", "achievement_id", "status", "is_locked").
		Exec(ctx)
	return err
}

func ListUserAchievements(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]*models.UserAchievement, error) {
	var items []*models.UserAchievement
	err := db.NewSelect().Model(&items).
		Relation("Achievement").
		Where("ua.user_id = ?", userID).
		OrderExpr("achievement.created_at ASC, ua.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func FindUserAchievement(ctx context.Context, db bun.IDB, userID, achievementID uuid.UUID) (*models.UserAchievement, error) {
	var item models.UserAchievement
	err := db.NewSelect().Model(&item).
		Where("user_id = ?", userID).
		Where("achievement_id = ?", achievementID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UnlockUserAchievement moves a blocked row to active. It returns false if the row was not blocked.
func UnlockUserAchievement(ctx context.Context, db bun.IDB, item *models.UserAchievement) (bool, error) {
	res, err := db.NewUpdate().Model(item).
		Set("status = ?", models.AchievementStatusActive).
		Set("is_locked = ?", false).
		WherePK().
		Where("status = ?", models.AchievementStatusBlocked).
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
