package services

import (
	"context"

	"questboard/internal/datastore"
	"questboard/internal/models"
	"questboard/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceQuestCatalog struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceQuestCatalog(container *do.Injector) (*ServiceQuestCatalog, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceQuestCatalog{container, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceQuestCatalog) ListQuests(ctx context.Context, page, limit int) ([]*models.Quest, error) {
	limit, offset := paginate(page, limit, QUESTS_DEFAULT_LIMIT)
	return datastore.ListQuests(ctx, service.readonlyPostgresDB, limit, offset)
}

func (service *ServiceQuestCatalog) GetQuest(ctx context.Context, questID uuid.UUID) (*models.Quest, error) {
	callback := func() (*models.Quest, error) {
		return findQuest(ctx, service.readonlyPostgresDB, questID)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyQuest(questID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceQuestCatalog) CreateQuest(ctx context.Context, actor *models.User, input *models.QuestInput) (*models.Quest, error) {
	if err := Authorize(actor, ActionQuestManage); err != nil {
		return nil, err
	}

	quest := &models.Quest{ID: uuid.New(), CreatedAt: now()}
	input.Apply(quest)
	return datastore.CreateQuest(ctx, service.postgresDB, quest)
}

func (service *ServiceQuestCatalog) ReplaceQuest(ctx context.Context, actor *models.User, questID uuid.UUID, input *models.QuestInput) (*models.Quest, error) {
	if err := Authorize(actor, ActionQuestManage); err != nil {
		return nil, err
	}

	quest, err := findQuest(ctx, service.postgresDB, questID)
	if err != nil {
		return nil, err
	}

	input.Apply(quest)
	updatedAt := now()
	quest.UpdatedAt = &updatedAt
	err = datastore.UpdateQuestColumns(ctx, service.postgresDB, quest,
		"name", "image_url", "description", "long_description", "goal", "requirements", "award", "required_level", "updated_at")
	if err != nil {
		return nil, err
	}

	service.forget(ctx, questID)
	return quest, nil
}

func (service *ServiceQuestCatalog) PatchQuest(ctx context.Context, actor *models.User, questID uuid.UUID, patch *models.QuestPatch) (*models.Quest, error) {
	if err := Authorize(actor, ActionQuestManage); err != nil {
		return nil, err
	}

	quest, err := findQuest(ctx, service.postgresDB, questID)
	if err != nil {
		return nil, err
	}

	columns := patch.Apply(quest)
	if len(columns) == 0 {
		return nil, errValidation("no fields to update")
	}
	updatedAt := now()
	quest.UpdatedAt = &updatedAt
	if err := datastore.UpdateQuestColumns(ctx, service.postgresDB, quest, append(columns, "updated_at")...); err != nil {
		return nil, err
	}

	service.forget(ctx, questID)
	return quest, nil
}

// DeleteQuest drops the quest with its rewards and every user's progress on it.
func (service *ServiceQuestCatalog) DeleteQuest(ctx context.Context, actor *models.User, questID uuid.UUID) error {
	if err := Authorize(actor, ActionQuestManage); err != nil {
		return err
	}

	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := findQuest(ctx, tx, questID); err != nil {
			return err
		}
		return datastore.DeleteQuestCascade(ctx, tx, questID)
	})
	if err != nil {
		return err
	}

	service.forget(ctx, questID)
	return nil
}

func (service *ServiceQuestCatalog) forget(ctx context.Context, questID uuid.UUID) {
	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyQuest(questID))
}
