package services

import (
	"context"

	"questboard/internal/datastore"
	"questboard/internal/interfaces"
	"questboard/internal/models"
	"questboard/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceReward struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	locker             interfaces.Locker
	logger             *logger.Logger
}

func NewServiceReward(container *do.Injector) (*ServiceReward, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	l, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	log, err := do.Invoke[*logger.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceReward{container, postgresDB, readonlyPostgresDB, l, log}, nil
}

// ClaimReward pays out every reward of a completed quest exactly once. The ledger
// rows, the wallet increment and the accepted flag commit together or not at all.
func (service *ServiceReward) ClaimReward(ctx context.Context, user *models.User, questID uuid.UUID) (*models.ClaimResult, error) {
	if err := Authorize(user, ActionQuestPlay); err != nil {
		return nil, err
	}

	unlock, err := lockUserQuest(ctx, service.locker, user.ID, questID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := &models.ClaimResult{}
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := datastore.FindUserByID(ctx, tx, user.ID); err != nil {
			if datastore.IsNotFound(err) {
				return errNotFound("user")
			}
			return err
		}

		progress, err := datastore.FindQuestProgress(ctx, tx, user.ID, questID)
		if datastore.IsNotFound(err) {
			return errConflict("quest not completed")
		}
		if err != nil {
			return err
		}
		if progress.Status != models.QuestStatusTaskCompleted {
			return errConflict("quest not completed")
		}

		rewards, err := datastore.ListRewardsByQuest(ctx, tx, questID)
		if err != nil {
			return err
		}
		if len(rewards) == 0 {
			return errNotFound("rewards")
		}

		if progress.IsRewardAccepted {
			return errConflict("reward already claimed")
		}
		rewardIDs := make([]uuid.UUID, len(rewards))
		for i, reward := range rewards {
			rewardIDs[i] = reward.ID
		}
		granted, err := datastore.CountUserRewards(ctx, tx, user.ID, rewardIDs)
		if err != nil {
			return err
		}
		if granted > 0 {
			return errConflict("reward already claimed")
		}

		grantedAt := now()
		ledger := make([]*models.UserReward, 0, len(rewards))
		for _, reward := range rewards {
			result.Delta.Add(reward)
			ledger = append(ledger, &models.UserReward{
				ID:            uuid.New(),
				UserID:        user.ID,
				RewardID:      reward.ID,
				QuestID:       questID,
				Coins:         reward.Coins,
				Points:        reward.Points,
				LevelIncrease: reward.LevelIncrease,
				GrantedAt:     grantedAt,
			})
		}
		err = datastore.InsertUserRewards(ctx, tx, ledger...)
		if datastore.IsUniqueViolation(err) {
			return errConflict("reward already claimed")
		}
		if err != nil {
			return err
		}

		if err := datastore.AddUserWallet(ctx, tx, user.ID, result.Delta, grantedAt); err != nil {
			return err
		}

		progress.UpdatedAt = grantedAt
		ok, err := datastore.MarkRewardAccepted(ctx, tx, progress)
		if err != nil {
			return err
		}
		if !ok {
			return errConflict("reward already claimed")
		}

		result.Rewards = rewards
		result.User, err = datastore.FindUserByID(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("reward claimed", "telegram_id", user.TelegramID, "quest_id", questID,
		"coins", result.Delta.Coins, "points", result.Delta.Points, "level", result.Delta.Level)
	return result, nil
}

func (service *ServiceReward) ListRewards(ctx context.Context, questID uuid.UUID) ([]*models.Reward, error) {
	if _, err := findQuest(ctx, service.readonlyPostgresDB, questID); err != nil {
		return nil, err
	}
	return datastore.ListRewardsByQuest(ctx, service.readonlyPostgresDB, questID)
}

func (service *ServiceReward) CreateReward(ctx context.Context, actor *models.User, questID uuid.UUID, input *models.RewardInput) (*models.Reward, error) {
	if err := Authorize(actor, ActionRewardManage); err != nil {
		return nil, err
	}
	if _, err := findQuest(ctx, service.postgresDB, questID); err != nil {
		return nil, err
	}

	reward := &models.Reward{
		ID:            uuid.New(),
		QuestID:       questID,
		Description:   input.Description,
		Coins:         input.Coins,
		Points:        input.Points,
		LevelIncrease: input.LevelIncrease,
	}
	return datastore.CreateReward(ctx, service.postgresDB, reward)
}

func (service *ServiceReward) PatchReward(ctx context.Context, actor *models.User, questID, rewardID uuid.UUID, patch *models.RewardPatch) (*models.Reward, error) {
	if err := Authorize(actor, ActionRewardManage); err != nil {
		return nil, err
	}

	reward, err := service.findReward(ctx, questID, rewardID)
	if err != nil {
		return nil, err
	}

	columns := patch.Apply(reward)
	if len(columns) == 0 {
		return nil, errValidation("no fields to update")
	}
	if err := datastore.UpdateRewardColumns(ctx, service.postgresDB, reward, columns...); err != nil {
		return nil, err
	}
	return reward, nil
}

func (service *ServiceReward) DeleteReward(ctx context.Context, actor *models.User, questID, rewardID uuid.UUID) error {
	if err := Authorize(actor, ActionRewardManage); err != nil {
		return err
	}

	if _, err := service.findReward(ctx, questID, rewardID); err != nil {
		return err
	}
	return datastore.DeleteReward(ctx, service.postgresDB, rewardID)
}

func (service *ServiceReward) findReward(ctx context.Context, questID, rewardID uuid.UUID) (*models.Reward, error) {
	reward, err := datastore.FindReward(ctx, service.postgresDB, questID, rewardID)
	if datastore.IsNotFound(err) {
		return nil, errNotFound("reward")
	}
	return reward, err
}
