package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"questboard/internal/datastore"
	"questboard/internal/interfaces"
	"questboard/internal/models"
	"questboard/internal/pkg/locker"
	"questboard/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// ServiceQuest drives a user's progress through a quest.
type ServiceQuest struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	locker             interfaces.Locker
	notifier           interfaces.Notifier
	logger             *logger.Logger
}

func NewServiceQuest(container *do.Injector) (*ServiceQuest, error) {
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

	notifier, err := do.Invoke[interfaces.Notifier](container)
	if err != nil {
		return nil, err
	}

	log, err := do.Invoke[*logger.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceQuest{container, postgresDB, readonlyPostgresDB, l, notifier, log}, nil
}

// Accept starts the quest for user. The first accept creates the progress row.
func (service *ServiceQuest) Accept(ctx context.Context, user *models.User, questID uuid.UUID) (*models.QuestProgress, error) {
	if err := Authorize(user, ActionQuestPlay); err != nil {
		return nil, err
	}

	unlock, err := lockUserQuest(ctx, service.locker, user.ID, questID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var progress *models.QuestProgress
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		quest, err := findQuest(ctx, tx, questID)
		if err != nil {
			return err
		}
		if !quest.Unlocked(user.Level) {
			return errInvalidState(fmt.Sprintf("quest requires level %d", *quest.RequiredLevel))
		}

		current, err := datastore.FindQuestProgress(ctx, tx, user.ID, questID)
		if datastore.IsNotFound(err) {
			startedAt := now()
			progress = &models.QuestProgress{
				ID:        uuid.New(),
				UserID:    user.ID,
				QuestID:   questID,
				Status:    models.QuestStatusInProgress,
				StartedAt: &startedAt,
				CreatedAt: startedAt,
				UpdatedAt: startedAt,
				Quest:     quest,
			}
			err = datastore.InsertQuestProgress(ctx, tx, progress)
			if datastore.IsUniqueViolation(err) {
				return errConflict("quest already accepted")
			}
			return err
		}
		if err != nil {
			return err
		}

		progress, err = advance(ctx, tx, current, models.QuestOpAccept, nil)
		if err != nil {
			return err
		}
		progress.Quest = quest
		return nil
	})
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// Submit hands the user's work in for review. It also resubmits after changes were requested.
func (service *ServiceQuest) Submit(ctx context.Context, user *models.User, questID uuid.UUID) (*models.QuestProgress, error) {
	if err := Authorize(user, ActionQuestPlay); err != nil {
		return nil, err
	}

	return service.transition(ctx, user.ID, questID, models.QuestOpSubmit, nil)
}

func (service *ServiceQuest) RequestChanges(ctx context.Context, reviewer *models.User, questID uuid.UUID, input *models.RequestChangesInput) (*models.QuestProgress, error) {
	if err := Authorize(reviewer, ActionQuestReview); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, errValidation("comment is required")
	}

	player, err := service.player(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	progress, err := service.transition(ctx, player.ID, questID, models.QuestOpRequestChanges, func(progress *models.QuestProgress) {
		progress.MentorComment = &comment
	})
	if err != nil {
		return nil, err
	}

	service.notify(player.TelegramID, fmt.Sprintf("Your quest <b>%s</b> needs changes: %s", html.EscapeString(progress.Quest.Name), html.EscapeString(comment)))
	return progress, nil
}

func (service *ServiceQuest) Complete(ctx context.Context, reviewer *models.User, questID uuid.UUID, input *models.ReviewInput) (*models.QuestProgress, error) {
	if err := Authorize(reviewer, ActionQuestReview); err != nil {
		return nil, err
	}

	player, err := service.player(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	progress, err := service.transition(ctx, player.ID, questID, models.QuestOpComplete, nil)
	if err != nil {
		return nil, err
	}

	service.notify(player.TelegramID, fmt.Sprintf("Your quest <b>%s</b> is complete. Claim your reward!", html.EscapeString(progress.Quest.Name)))
	return progress, nil
}

// Unlock opens a blocked onboarding quest so the player can accept it.
func (service *ServiceQuest) Unlock(ctx context.Context, reviewer *models.User, questID uuid.UUID, input *models.ReviewInput) (*models.QuestProgress, error) {
	if err := Authorize(reviewer, ActionQuestReview); err != nil {
		return nil, err
	}

	player, err := service.player(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	progress, err := service.transition(ctx, player.ID, questID, models.QuestOpUnlock, nil)
	if err != nil {
		return nil, err
	}

	service.notify(player.TelegramID, fmt.Sprintf("Quest <b>%s</b> is now unlocked.", html.EscapeString(progress.Quest.Name)))
	return progress, nil
}

func (service *ServiceQuest) ListUserQuests(ctx context.Context, user *models.User) ([]*models.QuestProgress, error) {
	return datastore.ListUserQuestProgress(ctx, service.readonlyPostgresDB, user.ID)
}

func (service *ServiceQuest) transition(ctx context.Context, userID, questID uuid.UUID, op models.QuestOp, mutate func(*models.QuestProgress)) (*models.QuestProgress, error) {
	var progress *models.QuestProgress
	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		quest, err := findQuest(ctx, tx, questID)
		if err != nil {
			return err
		}

		current, err := datastore.FindQuestProgress(ctx, tx, userID, questID)
		if datastore.IsNotFound(err) {
			return errNotFound("quest progress")
		}
		if err != nil {
			return err
		}

		progress, err = advance(ctx, tx, current, op, mutate)
		if err != nil {
			return err
		}
		progress.Quest = quest
		return nil
	})
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// advance applies op to current and persists it only if no one moved the row meanwhile.
func advance(ctx context.Context, db bun.IDB, current *models.QuestProgress, op models.QuestOp, mutate func(*models.QuestProgress)) (*models.QuestProgress, error) {
	from := current.Status
	next, rejection := from.Next(op)
	switch rejection {
	case models.RejectConflict:
		return nil, errConflict(fmt.Sprintf("cannot %s a quest in %s", op, from))
	case models.RejectInvalidState:
		return nil, errInvalidState(fmt.Sprintf("cannot %s a quest in %s", op, from))
	}

	current.Advance(next, now())
	if mutate != nil {
		mutate(current)
	}

	ok, err := datastore.TransitionQuestProgress(ctx, db, current, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errConflict("quest progress changed concurrently")
	}
	return current, nil
}

func (service *ServiceQuest) player(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := datastore.FindUserByTelegramID(ctx, service.postgresDB, telegramID)
	if datastore.IsNotFound(err) {
		return nil, errNotFound("user")
	}
	return user, err
}

// notify is fire and forget; the transition already committed.
func (service *ServiceQuest) notify(chatID int64, text string) {
	go func() {
		if err := service.notifier.Notify(chatID, text); err != nil {
			service.logger.Warn("notify player", "telegram_id", chatID, "error", err)
		}
	}()
}

func findQuest(ctx context.Context, db bun.IDB, questID uuid.UUID) (*models.Quest, error) {
	quest, err := datastore.FindQuestByID(ctx, db, questID)
	if datastore.IsNotFound(err) {
		return nil, errNotFound("quest")
	}
	return quest, err
}

func lockUserQuest(ctx context.Context, l interfaces.Locker, userID, questID uuid.UUID) (func(), error) {
	unlock, err := l.Lock(ctx, LockKeyUserQuest(userID, questID))
	if errors.Is(err, locker.ErrLocked) {
		return nil, errConflict("quest is being updated, retry later")
	}
	if err != nil {
		return nil, err
	}
	return unlock, nil
}
