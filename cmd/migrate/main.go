package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"time"

	"questboard/internal/datastore"
	"questboard/internal/models"
	"questboard/internal/services"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

const IMAGE_BUCKET = "https://quests-app-bucket.s3.eu-north-1.amazonaws.com/images/"

type seedQuest struct {
	quest   models.Quest
	rewards []models.Reward
}

var seedQuests = []seedQuest{
	{
		quest: models.Quest{Name: "Basic quest", ImageURL: IMAGE_BUCKET + "basic.png", Description: "Visit the Academy to reach the first level and pick a base class", Goal: "Visit the Academy to reach the first level and pick a base class", Award: "experience, class upgrade"},
		rewards: []models.Reward{
			{Description: "First level artifact", Coins: 100, Points: 50, LevelIncrease: 1},
		},
	},
	{
		quest: models.Quest{Name: "Routine quest", ImageURL: IMAGE_BUCKET + "routine.png", Description: "Finish a test assignment to earn an artifact and copper coins", Goal: "Finish a test assignment to earn an artifact and copper coins", Award: "experience, copper coins, artifacts"},
		rewards: []models.Reward{
			{Description: "Second level artifact", Coins: 200, Points: 100},
		},
	},
	{
		quest: models.Quest{Name: "Adventure quest", ImageURL: IMAGE_BUCKET + "adventure.png", Description: "Go through career coaching, training courses and similar tasks", Goal: "Go through career coaching, training courses and similar tasks", Award: "class upgrade, level, artifacts, copper coins"},
		rewards: []models.Reward{
			{Description: "Copper coins", Coins: 300},
			{Description: "Level up", Points: 150, LevelIncrease: 1},
		},
	},
	{
		quest: models.Quest{Name: "Repeatable quest", ImageURL: IMAGE_BUCKET + "reusable.png", Description: "Bring new members through your partner link", Goal: "Bring new members through your partner link", Award: "experience"},
		rewards: []models.Reward{
			{Description: "Experience", Points: 80},
		},
	},
	{
		quest: models.Quest{Name: "Team quest", ImageURL: IMAGE_BUCKET + "team.png", Description: "Join a team project to earn experience and gold coins", Goal: "Join a team project to earn experience and gold coins", Award: "experience, gold and copper coins, artifacts", RequiredLevel: intPtr(2)},
		rewards: []models.Reward{
			{Description: "Gold coins", Coins: 1000, Points: 300},
		},
	},
	{
		quest: models.Quest{Name: "Mini boss battle", ImageURL: IMAGE_BUCKET + "mini_boss.png", Description: "Pass an online exam to earn an artifact", Goal: "Pass an online exam to earn an artifact", Award: "artifacts", RequiredLevel: intPtr(3)},
		rewards: []models.Reward{
			{Description: "Boss artifact", Coins: 500, Points: 500, LevelIncrease: 1},
		},
	},
}

var seedAchievements = []models.Achievement{
	{Name: "Beginner", Description: "Reach the first level", ImageURL: strPtr(IMAGE_BUCKET + "achievement_1.png")},
	{Name: "Novice", Description: "Finish the basic training", ImageURL: strPtr(IMAGE_BUCKET + "achievement_2.png")},
	{Name: "Explorer", Description: "Complete 3 different quests", ImageURL: strPtr(IMAGE_BUCKET + "achievement_3.png")},
	{Name: "Warrior", Description: "Collect 5 artifacts", ImageURL: strPtr(IMAGE_BUCKET + "achievement_4.png")},
	{Name: "Commander", Description: "Finish a team quest", ImageURL: strPtr(IMAGE_BUCKET + "achievement_5.png")},
	{Name: "Mage", Description: "Reach level 10", ImageURL: strPtr(IMAGE_BUCKET + "achievement_6.png")},
}

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	if _, err := env.EnvsRequired("DB_DSN"); err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Description: "Create tables, indexes and the role catalog",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := datastore.Migrate(ctx, db); err != nil {
				return err
			}

			log.Println("migrated")
			return nil
		},
	}
}

func commandSeed() *cli.Command {
	return &cli.Command{
		Name:        "seed",
		Description: "Insert default configs, achievements and the starter quest catalog",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				if err := datastore.EnsureRoles(ctx, tx); err != nil {
					return err
				}

				configs := []models.Config{
					{Key: services.CONFIG_STARTER_QUEST_COUNT, Value: strconv.Itoa(services.DEFAULT_STARTER_QUEST_COUNT)},
					{Key: services.CONFIG_STARTER_ACHIEVEMENTS, Value: services.DEFAULT_STARTER_ACHIEVEMENTS},
					{Key: services.CONFIG_LIFECYCLE_RATE_LIMIT, Value: strconv.Itoa(services.LIFECYCLE_RATE_LIMIT_PER_MINUTE)},
					{Key: services.CONFIG_LEADERBOARD_CACHE_SECONDS, Value: "60"},
				}
				for i := range configs {
					if err := datastore.UpsertConfig(ctx, tx, &configs[i]); err != nil {
						return err
					}
				}

				if err := seedAchievementCatalog(ctx, tx); err != nil {
					return err
				}

				existing, err := datastore.ListQuests(ctx, tx, 1, 0)
				if err != nil {
					return err
				}
				if len(existing) > 0 {
					log.Println("quests already seeded, skipping")
					return nil
				}

				return seedQuestCatalog(ctx, tx)
			})
		},
	}
}

func seedAchievementCatalog(ctx context.Context, db bun.IDB) error {
	names := make([]string, 0, len(seedAchievements))
	for _, achievement := range seedAchievements {
		names = append(names, achievement.Name)
	}

	existing, err := datastore.FindAchievementsByNames(ctx, db, names)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(existing))
	for _, achievement := range existing {
		present[achievement.Name] = true
	}

	now := time.Now().UTC()
	for i, achievement := range seedAchievements {
		if present[achievement.Name] {
			continue
		}
		achievement.ID = uuid.New()
		achievement.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if _, err := datastore.CreateAchievement(ctx, db, &achievement); err != nil {
			return err
		}
	}
	return nil
}

// seedQuestCatalog keeps insertion order in created_at; starter quests are the oldest ones.
func seedQuestCatalog(ctx context.Context, db bun.IDB) error {
	now := time.Now().UTC()
	for i, item := range seedQuests {
		quest := item.quest
		quest.ID = uuid.New()
		quest.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if _, err := datastore.CreateQuest(ctx, db, &quest); err != nil {
			return err
		}

		for _, reward := range item.rewards {
			reward.ID = uuid.New()
			reward.QuestID = quest.ID
			if _, err := datastore.CreateReward(ctx, db, &reward); err != nil {
				return err
			}
		}
	}

	log.Printf("seeded %d quests\n", len(seedQuests))
	return nil
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}
