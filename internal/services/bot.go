package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"questboard/internal/models"
	"questboard/internal/pkg/logger"

	initdata "github.com/telegram-mini-apps/init-data-golang"
	tele "gopkg.in/telebot.v3"
)

type Bot struct {
	token       string
	apiURL      string
	initDataTTL time.Duration
	logger      *logger.Logger

	once      sync.Once
	client    *tele.Bot
	clientErr error
}

func NewBot(token string, initDataTTL time.Duration, log *logger.Logger) (*Bot, error) {
	return NewBotWithAPI(token, "", initDataTTL, log)
}

// NewBotWithAPI talks to apiURL instead of the public bot api. Empty means the default.
func NewBotWithAPI(token string, apiURL string, initDataTTL time.Duration, log *logger.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	return &Bot{token: token, apiURL: apiURL, initDataTTL: initDataTTL, logger: log}, nil
}

// ValidateInitData checks the telegram signature of a mini app launch payload and returns its user.
func (bot *Bot) ValidateInitData(dataStr string) (*models.UserFromAuth, error) {
	err := initdata.Validate(dataStr, bot.token, bot.initDataTTL)
	if err != nil {
		return nil, err
	}

	data, err := initdata.Parse(dataStr)
	if err != nil {
		return nil, err
	}
	if data.User.ID == 0 {
		return nil, errors.New("init data carries no user")
	}

	return &models.UserFromAuth{
		ID:           data.User.ID,
		Username:     data.User.Username,
		FirstName:    data.User.FirstName,
		LastName:     data.User.LastName,
		IsPremium:    data.User.IsPremium,
		LanguageCode: data.User.LanguageCode,
		PhotoURL:     data.User.PhotoURL,
	}, nil
}

// api builds the telegram client once. Offline skips the getMe round trip.
func (bot *Bot) api() (*tele.Bot, error) {
	bot.once.Do(func() {
		bot.client, bot.clientErr = tele.NewBot(tele.Settings{
			URL:     bot.apiURL,
			Token:   bot.token,
			Offline: true,
		})
	})
	return bot.client, bot.clientErr
}

// ProfilePhotoURL returns a download link for the user's current profile photo.
func (bot *Bot) ProfilePhotoURL(telegramID int64) (string, error) {
	b, err := bot.api()
	if err != nil {
		return "", err
	}

	photos, err := b.ProfilePhotosOf(&tele.User{ID: telegramID})
	if err != nil {
		return "", err
	}
	if len(photos) == 0 {
		return "", fmt.Errorf("user %d has no profile photo", telegramID)
	}

	f, err := b.FileByID(photos[0].FileID)
	if err != nil {
		return "", err
	}
	if f.FilePath == "" {
		return "", fmt.Errorf("photo %s has no file path", photos[0].FileID)
	}

	return b.URL + "/file/bot" + b.Token + "/" + f.FilePath, nil
}

// Notify sends text as HTML. Callers escape anything user supplied.
func (bot *Bot) Notify(chatID int64, text string) error {
	b, err := bot.api()
	if err != nil {
		return err
	}

	_, err = b.Send(&tele.User{ID: chatID}, text, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}
