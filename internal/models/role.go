package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RoleName string

const (
	RoleAdventurer RoleName = "adventurer"
	RoleAvatar     RoleName = "avatar"
	RoleKingdom    RoleName = "kingdom"
)

var Roles = []RoleName{RoleAdventurer, RoleAvatar, RoleKingdom}

func (name RoleName) Valid() bool {
	for _, r := range Roles {
		if r == name {
			return true
		}
	}
	return false
}

type Role struct {
	bun.BaseModel `bun:"table:user_roles,alias:r"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name          RoleName  `bun:"role_name,notnull,unique" json:"role_name"`
}
