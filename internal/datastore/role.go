package datastore

import (
	"context"

	"questboard/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EnsureRoles inserts the fixed role catalog, skipping names already present.
func EnsureRoles(ctx context.Context, db bun.IDB) error {
	for _, name := range models.Roles {
		role := &models.Role{ID: uuid.New(), Name: name}
		_, err := db.NewInsert().Model(role).Ignore().Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func FindRoleByName(ctx context.Context, db bun.IDB, name models.RoleName) (*models.Role, error) {
	var role models.Role
	err := db.NewSelect().Model(&role).Where("role_name = ?", name).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &role, nil
}
