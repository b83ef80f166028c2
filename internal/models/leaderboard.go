package models

import "github.com/google/uuid"

type LeaderboardItem struct {
	ID            uuid.UUID `json:"id"`
	TelegramID    int64     `json:"telegram_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	ImageURL      string    `json:"image_url"`
	Points        int       `json:"points"`
	Position      int       `json:"position"`
	IsCurrentUser bool      `json:"is_current_user"`
}

func NewLeaderboardItem(user *User, position int, current bool) *LeaderboardItem {
	return &LeaderboardItem{
		ID:            user.ID,
		TelegramID:    user.TelegramID,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		ImageURL:      user.ImageURL,
		Points:        user.Points,
		Position:      position,
		IsCurrentUser: current,
	}
}

type LeaderboardResponse struct {
	Users       []*LeaderboardItem `json:"users"`
	CurrentUser *LeaderboardItem   `json:"current_user"`
}
