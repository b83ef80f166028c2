package services

import (
	"context"
	"fmt"
	"strings"

	"questboard/internal/datastore"
	"questboard/internal/interfaces"
	"questboard/internal/models"
	"questboard/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceUser struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	photos             interfaces.ProfilePhotos
	logger             *logger.Logger

	serviceOnboarding *ServiceOnboarding
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	photos, err := do.Invoke[interfaces.ProfilePhotos](container)
	if err != nil {
		return nil, err
	}

	log, err := do.Invoke[*logger.Logger](container)
	if err != nil {
		return nil, err
	}

	serviceOnboarding, err := do.Invoke[*ServiceOnboarding](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, postgresDB, readonlyPostgresDB, photos, log, serviceOnboarding}, nil
}

// FindUser resolves a verified telegram identity to a registered user and keeps
// the stored profile names in step with telegram.
func (service *ServiceUser) FindUser(ctx context.Context, userAuth *models.UserFromAuth) (*models.User, error) {
	if userAuth == nil {
		return nil, ErrAuthentication
	}

	user, err := datastore.FindUserByTelegramID(ctx, service.postgresDB, userAuth.ID)
	if datastore.IsNotFound(err) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}

	var columns []string
	if userAuth.FirstName != "" && user.FirstName != userAuth.FirstName {
		user.FirstName = userAuth.FirstName
		columns = append(columns, "first_name")
	}
	if userAuth.LastName != "" && user.LastName != userAuth.LastName {
		user.LastName = userAuth.LastName
		columns = append(columns, "last_name")
	}
	if userAuth.Username != "" && user.Username != strings.ToLower(userAuth.Username) {
		user.Username = strings.ToLower(userAuth.Username)
		columns = append(columns, "username")
	}
	if len(columns) > 0 {
		user.UpdatedAt = now()
		if err := datastore.UpdateUserColumns(ctx, service.postgresDB, user, columns...); err != nil {
			service.logger.Warn("sync user profile", "telegram_id", user.TelegramID, "error", err)
		}
	}

	return user, nil
}

// Profile attaches the user's quest progress and achievements.
func (service *ServiceUser) Profile(ctx context.Context, user *models.User) (*models.User, error) {
	progress, err := datastore.ListUserQuestProgress(ctx, service.readonlyPostgresDB, user.ID)
	if err != nil {
		return nil, err
	}

	achievements, err := datastore.ListUserAchievements(ctx, service.readonlyPostgresDB, user.ID)
	if err != nil {
		return nil, err
	}

	user.QuestProgress = progress
	user.Achievements = achievements
	return user, nil
}

// Register creates the player behind userAuth with the selected role and onboards it.
// An already registered player is returned unchanged with created=false.
func (service *ServiceUser) Register(ctx context.Context, userAuth *models.UserFromAuth, input *models.RoleSelection) (*models.User, bool, error) {
	if userAuth == nil {
		return nil, false, ErrAuthentication
	}

	existing, err := datastore.FindUserByTelegramID(ctx, service.postgresDB, userAuth.ID)
	if err == nil {
		return existing, false, nil
	}
	if !datastore.IsNotFound(err) {
		return nil, false, err
	}

	user := &models.User{
		TelegramID:   userAuth.ID,
		FirstName:    userAuth.FirstName,
		LastName:     userAuth.LastName,
		Username:     strings.ToLower(userAuth.Username),
		LanguageCode: userAuth.LanguageCode,
		IsPremium:    userAuth.IsPremium,
		UserClass:    input.UserClass,
	}
	user, err = service.create(ctx, user, input.Role)
	if datastore.IsUniqueViolation(err) {
		// lost a registration race against the same telegram user
		existing, err := datastore.FindUserByTelegramID(ctx, service.postgresDB, userAuth.ID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return user, true, nil
}

// CreateUser registers a user on someone else's behalf.
func (service *ServiceUser) CreateUser(ctx context.Context, actor *models.User, input *models.UserCreate) (*models.User, error) {
	if err := Authorize(actor, ActionUserManage); err != nil {
		return nil, err
	}

	user := &models.User{
		TelegramID: input.TelegramID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Username:   strings.ToLower(input.Username),
		UserClass:  input.UserClass,
	}
	user, err := service.create(ctx, user, input.Role)
	if datastore.IsUniqueViolation(err) {
		return nil, errConflict(fmt.Sprintf("user %d already exists", input.TelegramID))
	}
	return user, err
}

func (service *ServiceUser) create(ctx context.Context, user *models.User, roleName models.RoleName) (*models.User, error) {
	if !roleName.Valid() {
		return nil, errValidation(fmt.Sprintf("unknown role %q", roleName))
	}
	if user.TelegramID == 0 {
		return nil, errValidation("telegram id is required")
	}

	plan, err := service.serviceOnboarding.Plan(ctx)
	if err != nil {
		return nil, err
	}

	role, err := datastore.FindRoleByName(ctx, service.postgresDB, roleName)
	if datastore.IsNotFound(err) {
		return nil, errValidation(fmt.Sprintf("role %q is not configured", roleName))
	}
	if err != nil {
		return nil, err
	}

	createdAt := now()
	user.ID = uuid.New()
	user.RoleID = &role.ID
	user.Role = role
	user.ImageURL = service.profilePhoto(user.TelegramID)
	user.Level = models.DefaultUserLevel
	user.Points = models.DefaultUserPoints
	user.Coins = models.DefaultUserCoins
	user.CreatedAt = createdAt
	user.UpdatedAt = createdAt

	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := datastore.CreateUser(ctx, tx, user); err != nil {
			return err
		}
		return service.serviceOnboarding.Assign(ctx, tx, plan, user, createdAt)
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("user registered", "telegram_id", user.TelegramID, "role", roleName)
	return user, nil
}

// profilePhoto never fails; users without a reachable photo get the default avatar.
func (service *ServiceUser) profilePhoto(telegramID int64) string {
	url, err := service.photos.ProfilePhotoURL(telegramID)
	if err != nil || url == "" {
		if err != nil {
			service.logger.Debug("profile photo unavailable", "telegram_id", telegramID, "error", err)
		}
		return models.DefaultAvatarURL
	}
	return url
}

func (service *ServiceUser) ListUsers(ctx context.Context, actor *models.User, page, limit int) ([]*models.User, error) {
	if err := Authorize(actor, ActionUserRead); err != nil {
		return nil, err
	}

	limit, offset := paginate(page, limit, USERS_DEFAULT_LIMIT)
	return datastore.ListUsers(ctx, service.readonlyPostgresDB, limit, offset)
}

func (service *ServiceUser) GetUser(ctx context.Context, actor *models.User, telegramID int64) (*models.User, error) {
	if err := AuthorizeSelf(actor, telegramID, ActionUserRead); err != nil {
		return nil, err
	}

	user, err := service.findByTelegramID(ctx, service.readonlyPostgresDB, telegramID)
	if err != nil {
		return nil, err
	}
	return service.Profile(ctx, user)
}

func (service *ServiceUser) ReplaceUser(ctx context.Context, actor *models.User, telegramID int64, input *models.UserReplace) (*models.User, error) {
	if err := Authorize(actor, ActionUserManage); err != nil {
		return nil, err
	}

	user, err := service.findByTelegramID(ctx, service.postgresDB, telegramID)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Username = strings.ToLower(input.Username)
	user.UserClass = input.UserClass
	user.Level = input.Level
	user.Points = input.Points
	user.Coins = input.Coins
	user.UpdatedAt = now()

	err = datastore.UpdateUserColumns(ctx, service.postgresDB, user, "first_name", "last_name", "username", "user_class", "level", "points", "coins")
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (service *ServiceUser) PatchUser(ctx context.Context, actor *models.User, telegramID int64, patch *models.UserPatch) (*models.User, error) {
	if err := Authorize(actor, ActionUserManage); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, errValidation("no fields to update")
	}

	user, err := service.findByTelegramID(ctx, service.postgresDB, telegramID)
	if err != nil {
		return nil, err
	}

	columns := patch.Apply(user)
	user.UpdatedAt = now()
	if err := datastore.UpdateUserColumns(ctx, service.postgresDB, user, columns...); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user with its progress, achievements and reward ledger.
// Users may delete themselves.
func (service *ServiceUser) DeleteUser(ctx context.Context, actor *models.User, telegramID int64) error {
	if err := AuthorizeSelf(actor, telegramID, ActionUserManage); err != nil {
		return err
	}

	return service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := service.findByTelegramID(ctx, tx, telegramID)
		if err != nil {
			return err
		}
		return datastore.DeleteUserCascade(ctx, tx, user.ID)
	})
}

func (service *ServiceUser) findByTelegramID(ctx context.Context, db bun.IDB, telegramID int64) (*models.User, error) {
	user, err := datastore.FindUserByTelegramID(ctx, db, telegramID)
	if datastore.IsNotFound(err) {
		return nil, errNotFound("user")
	}
	return user, err
}

// paginate turns a zero based page into limit and offset.
func paginate(page, limit, defaultLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > PAGE_MAX_LIMIT {
		limit = PAGE_MAX_LIMIT
	}
	if page < 0 {
		page = 0
	}
	return limit, page * limit
}
