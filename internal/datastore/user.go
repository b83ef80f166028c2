package datastore

import (
	"context"
	"time"

	"questboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func FindUserByTelegramID(ctx context.Context, db bun.IDB, telegramID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Relation("Role").Where("u.telegram_id = ?", telegramID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db bun.IDB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Relation("Role").Where("u.id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db bun.IDB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func ListUsers(ctx context.Context, db bun.IDB, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Relation("Role").
		OrderExpr("u.created_at ASC, u.id ASC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateUserColumns writes only the given columns plus updated_at.
func UpdateUserColumns(ctx context.Context, db bun.IDB, user *models.User, columns ...string) error {
	_, err := db.NewUpdate().Model(user).Column(append(columns, "updated_at")...).WherePK().Exec(ctx)
	return err
}

// AddUserWallet applies additive deltas so concurrent writers never overwrite each other.
func AddUserWallet(ctx context.Context, db bun.IDB, userID uuid.UUID, delta models.WalletDelta, now time.Time) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("coins = coins + ?", delta.Coins).
		Set("points = points + ?", delta.Points).
		Set("level = level + ?", delta.Level).
		Set("updated_at = ?", now).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

// DeleteUserCascade removes the user together with everything keyed by it.
func DeleteUserCascade(ctx context.Context, db bun.IDB, userID uuid.UUID) error {
	if _, err := db.NewDelete().Model((*models.UserReward)(nil)).Where("user_id = ?", userID).Exec(ctx); err != nil {
		return err
	}
	if _, err := db.NewDelete().Model((*models.UserAchievement)(nil)).Where("user_id = ?", userID).Exec(ctx); err != nil {
		return err
	}
	if _, err := db.NewDelete().Model((*models.QuestProgress)(nil)).Where("user_id = ?", userID).Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewDelete().Model((*models.User)(nil)).Where("id = ?", userID).Exec(ctx)
	return err
}

// ListLeaderboard returns users active since the cutoff, best first.
func ListLeaderboard(ctx context.Context, db bun.IDB, since time.Time, limit int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).
		Where("updated_at >= ?", since).
		OrderExpr("points DESC, telegram_id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// CountUsersAhead counts users ranked before (points, telegramID) in the global ordering.
func CountUsersAhead(ctx context.Context, db bun.IDB, points int, telegramID int64) (int, error) {
	return db.NewSelect().
		Model((*models.User)(nil)).
		Where("points > ? OR (points = ? AND telegram_id < ?)", points, points, telegramID).
		Count(ctx)
}
