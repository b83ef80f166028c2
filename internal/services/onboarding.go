package services

import (
	"context"
	"fmt"
	"time"

	"questboard/internal/datastore"
	"questboard/internal/models"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceOnboarding struct {
	container     *do.Injector
	serviceConfig *ServiceConfig
}

func NewServiceOnboarding(container *do.Injector) (*ServiceOnboarding, error) {
	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceOnboarding{container, serviceConfig}, nil
}

// OnboardingPlan is read before the registration transaction opens.
type OnboardingPlan struct {
	QuestCount   int
	Achievements []string
}

func (service *ServiceOnboarding) Plan(ctx context.Context) (*OnboardingPlan, error) {
	count, err := service.serviceConfig.GetIntConfig(ctx, CONFIG_STARTER_QUEST_COUNT, DEFAULT_STARTER_QUEST_COUNT)
	if err != nil {
		return nil, err
	}

	names, err := service.serviceConfig.GetListConfig(ctx, CONFIG_STARTER_ACHIEVEMENTS, DEFAULT_STARTER_ACHIEVEMENTS)
	if err != nil {
		return nil, err
	}

	return &OnboardingPlan{QuestCount: count, Achievements: names}, nil
}

// Assign gives a new user the starter quests and achievements. The first half of
// each set starts active, the rest blocked. db must be the registration transaction.
func (service *ServiceOnboarding) Assign(ctx context.Context, db bun.IDB, plan *OnboardingPlan, user *models.User, now time.Time) error {
	quests, err := datastore.ListStarterQuests(ctx, db, plan.QuestCount)
	if err != nil {
		return err
	}
	if len(quests) < plan.QuestCount {
		return fmt.Errorf("%w: need %d starter quests, catalog has %d", ErrOnboardingPrecondition, plan.QuestCount, len(quests))
	}

	progress := make([]*models.QuestProgress, 0, len(quests))
	for i, quest := range quests {
		status := models.QuestStatusActive
		if i >= len(quests)/2 {
			status = models.QuestStatusBlocked
		}
		progress = append(progress, &models.QuestProgress{
			ID:        uuid.New(),
			UserID:    user.ID,
			QuestID:   quest.ID,
			Status:    status,
			IsLocked:  status == models.QuestStatusBlocked,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := datastore.InsertQuestProgress(ctx, db, progress...); err != nil {
		return err
	}

	achievements, err := datastore.FindAchievementsByNames(ctx, db, plan.Achievements)
	if err != nil {
		return err
	}
	byName := make(map[string]*models.Achievement, len(achievements))
	for _, achievement := range achievements {
		byName[achievement.Name] = achievement
	}

	items := make([]*models.UserAchievement, 0, len(plan.Achievements))
	for i, name := range plan.Achievements {
		achievement, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: starter achievement %q is missing", ErrOnboardingPrecondition, name)
		}
		status := models.AchievementStatusActive
		if i >= len(plan.Achievements)/2 {
			status = models.AchievementStatusBlocked
		}
		items = append(items, &models.UserAchievement{
			ID:            uuid.New(),
			UserID:        user.ID,
			AchievementID: achievement.ID,
			Status:        status,
			IsLocked:      status == models.AchievementStatusBlocked,
		})
	}

	return datastore.InsertUserAchievements(ctx, db, items...)
}
