package datastore

import (
	"context"

	"questboard/internal/models"

	"github.com/uptrace/bun"
)

// Migrate creates every table and index the api needs. Safe to run repeatedly.
func Migrate(ctx context.Context, db bun.IDB) error {
	steps := []func(context.Context, bun.IDB) error{
		CreateTableRole,
		CreateTableUser,
		CreateTableQuest,
		CreateTableQuestProgress,
		CreateTableAchievement,
		CreateTableUserAchievement,
		CreateTableReward,
		CreateTableUserReward,
		CreateTableConfig,
	}
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			return err
		}
	}

	return EnsureRoles(ctx, db)
}

func CreateTableRole(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.Role)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTableUser(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_users_points").IfNotExists().Column("points", "telegram_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_users_updated_at").IfNotExists().Column("updated_at").Exec(ctx)
	return err
}

func CreateTableQuest(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.Quest)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Quest)(nil)).Index("index_quests_created_at").IfNotExists().Column("created_at", "id").Exec(ctx)
	return err
}

func CreateTableQuestProgress(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.QuestProgress)(nil)).IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		ForeignKey(`("quest_id") REFERENCES "quests" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	// one row per (user, quest) closes the accept race
	_, err = db.NewCreateIndex().Model((*models.QuestProgress)(nil)).Index("unique_user_quest_progress").Unique().IfNotExists().Column("user_id", "quest_id").Exec(ctx)
	return err
}

func CreateTableAchievement(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.Achievement)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTableUserAchievement(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.UserAchievement)(nil)).IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		ForeignKey(`("achievement_id") REFERENCES "achievements" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserAchievement)(nil)).Index("unique_user_achievements").Unique().IfNotExists().Column("user_id", "achievement_id").Exec(ctx)
	return err
}

func CreateTableReward(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.Reward)(nil)).IfNotExists().
		ForeignKey(`("quest_id") REFERENCES "quests" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Reward)(nil)).Index("index_rewards_quest_id").IfNotExists().Column("quest_id").Exec(ctx)
	return err
}

func CreateTableUserReward(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*models.UserReward)(nil)).IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	// the ledger grants a reward at most once per user
	_, err = db.NewCreateIndex().Model((*models.UserReward)(nil)).Index("unique_user_rewards").Unique().IfNotExists().Column("user_id", "reward_id").Exec(ctx)
	return err
}
