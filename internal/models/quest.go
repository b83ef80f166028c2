package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Quest struct {
	bun.BaseModel   `bun:"table:quests,alias:q"`
	ID              uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Name            string     `bun:"name,notnull" json:"name"`
	ImageURL        string     `bun:"image_url" json:"image_url"`
	Description     string     `bun:"description" json:"description"`
	LongDescription *string    `bun:"long_description" json:"long_description"`
	Goal            string     `bun:"goal" json:"goal"`
	Requirements    string     `bun:"requirements" json:"requirements"`
	Award           string     `bun:"award" json:"award"`
	RequiredLevel   *int       `bun:"required_level" json:"required_level"`
	CreatedAt       time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       *time.Time `bun:"updated_at" json:"updated_at"`
}

// Unlocked reports whether a user at level may take the quest.
func (quest *Quest) Unlocked(level int) bool {
	return quest.RequiredLevel == nil || level >= *quest.RequiredLevel
}

type QuestInput struct {
	Name            string  `json:"name" validate:"required"`
	ImageURL        string  `json:"image_url"`
	Description     string  `json:"description"`
	LongDescription *string `json:"long_description"`
	Goal            string  `json:"goal"`
	Requirements    string  `json:"requirements"`
	Award           string  `json:"award"`
	RequiredLevel   *int    `json:"required_level" validate:"omitempty,gte=1"`
}

func (input *QuestInput) Apply(quest *Quest) {
	quest.Name = input.Name
	quest.ImageURL = input.ImageURL
	quest.Description = input.Description
	quest.LongDescription = input.LongDescription
	quest.Goal = input.Goal
	quest.Requirements = input.Requirements
	quest.Award = input.Award
	quest.RequiredLevel = input.RequiredLevel
}

type QuestPatch struct {
	Name            *string `json:"name" validate:"omitempty,min=1"`
	ImageURL        *string `json:"image_url"`
	Description     *string `json:"description"`
	LongDescription *string `json:"long_description"`
	Goal            *string `json:"goal"`
	Requirements    *string `json:"requirements"`
	Award           *string `json:"award"`
	RequiredLevel   *int    `json:"required_level" validate:"omitempty,gte=1"`
}

func (patch *QuestPatch) Apply(quest *Quest) []string {
	var columns []string
	set := func(column string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			columns = append(columns, column)
		}
	}
	set("name", &quest.Name, patch.Name)
	set("image_url", &quest.ImageURL, patch.ImageURL)
	set("description", &quest.Description, patch.Description)
	set("goal", &quest.Goal, patch.Goal)
	set("requirements", &quest.Requirements, patch.Requirements)
	set("award", &quest.Award, patch.Award)
	if patch.LongDescription != nil {
		quest.LongDescription = patch.LongDescription
		columns = append(columns, "long_description")
	}
	if patch.RequiredLevel != nil {
		quest.RequiredLevel = patch.RequiredLevel
		columns = append(columns, "required_level")
	}
	return columns
}
