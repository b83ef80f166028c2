package services

import (
	"context"
	"fmt"
	"html"

	"questboard/internal/datastore"
	"questboard/internal/interfaces"
	"questboard/internal/models"
	"questboard/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceAchievement struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	notifier           interfaces.Notifier
	logger             *logger.Logger
}

func NewServiceAchievement(container *do.Injector) (*ServiceAchievement, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	notifier, err := do.Invoke[interfaces.Notifier](container)
	if err != nil {
		return nil, err
	}

	log, err := do.Invoke[*logger.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAchievement{container, postgresDB, readonlyPostgresDB, notifier, log}, nil
}

func (service *ServiceAchievement) ListAchievements(ctx context.Context) ([]*models.Achievement, error) {
	return datastore.ListAchievements(ctx, service.readonlyPostgresDB)
}

func (service *ServiceAchievement) CreateAchievement(ctx context.Context, actor *models.User, input *models.AchievementInput) (*models.Achievement, error) {
	if err := Authorize(actor, ActionAchievementManage); err != nil {
		return nil, err
	}

	achievement := &models.Achievement{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		CreatedAt:   now(),
	}
	achievement, err := datastore.CreateAchievement(ctx, service.postgresDB, achievement)
	if datastore.IsUniqueViolation(err) {
		return nil, errConflict(fmt.Sprintf("achievement %q already exists", input.Name))
	}
	return achievement, err
}

func (service *ServiceAchievement) ListUserAchievements(ctx context.Context, user *models.User) ([]*models.UserAchievement, error) {
	return datastore.ListUserAchievements(ctx, service.readonlyPostgresDB, user.ID)
}

// UnlockAchievement opens a blocked achievement of another user.
func (service *ServiceAchievement) UnlockAchievement(ctx context.Context, reviewer *models.User, achievementID uuid.UUID, input *models.ReviewInput) (*models.UserAchievement, error) {
	if err := Authorize(reviewer, ActionAchievementUnlock); err != nil {
		return nil, err
	}

	player, err := datastore.FindUserByTelegramID(ctx, service.postgresDB, input.UserID)
	if datastore.IsNotFound(err) {
		return nil, errNotFound("user")
	}
	if err != nil {
		return nil, err
	}

	var item *models.UserAchievement
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		achievement, err := datastore.FindAchievementByID(ctx, tx, achievementID)
		if datastore.IsNotFound(err) {
			return errNotFound("achievement")
		}
		if err != nil {
			return err
		}

		item, err = datastore.FindUserAchievement(ctx, tx, player.ID, achievementID)
		if datastore.IsNotFound(err) {
			return errNotFound("user achievement")
		}
		if err != nil {
			return err
		}

		ok, err := datastore.UnlockUserAchievement(ctx, tx, item)
		if err != nil {
			return err
		}
		if !ok {
			return errInvalidState("achievement is not blocked")
		}
		item.Status = models.AchievementStatusActive
		item.IsLocked = false
		item.Achievement = achievement
		return nil
	})
	if err != nil {
		return nil, err
	}

	go func() {
		text := fmt.Sprintf("Achievement <b>%s</b> unlocked!", html.EscapeString(item.Achievement.Name))
		if err := service.notifier.Notify(player.TelegramID, text); err != nil {
			service.logger.Warn("notify player", "telegram_id", player.TelegramID, "error", err)
		}
	}()
	return item, nil
}
