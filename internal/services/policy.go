package services

import (
	"fmt"

	"questboard/internal/models"
)

type Action string

const (
	ActionQuestPlay         Action = "quest:play"
	ActionQuestReview       Action = "quest:review"
	ActionQuestManage       Action = "quest:manage"
	ActionRewardManage      Action = "reward:manage"
	ActionAchievementManage Action = "achievement:manage"
	ActionAchievementUnlock Action = "achievement:unlock"
	ActionUserRead          Action = "user:read"
	ActionUserManage        Action = "user:manage"
	ActionLeaderboardRead   Action = "leaderboard:read"
)

var playerActions = []Action{ActionQuestPlay, ActionLeaderboardRead}

var reviewerActions = append([]Action{ActionQuestReview, ActionAchievementUnlock}, playerActions...)

var policy = map[models.RoleName][]Action{
	models.RoleAdventurer: playerActions,
	models.RoleAvatar:     reviewerActions,
	models.RoleKingdom: append([]Action{
		ActionQuestManage,
		ActionRewardManage,
		ActionAchievementManage,
		ActionUserRead,
		ActionUserManage,
	}, reviewerActions...),
}

// Authorize checks the user's role against the policy table.
func Authorize(user *models.User, action Action) error {
	if user == nil {
		return ErrAuthentication
	}
	for _, allowed := range policy[user.RoleName()] {
		if allowed == action {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q may not %s", ErrForbidden, user.RoleName(), action)
}

// AuthorizeSelf lets a user act on their own account without the action.
func AuthorizeSelf(user *models.User, telegramID int64, action Action) error {
	if user != nil && user.TelegramID == telegramID {
		return nil
	}
	return Authorize(user, action)
}
