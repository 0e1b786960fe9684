package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/pkg/enums"
)

// User mirrors an identity-provider account inside the store.
type User struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ExternalID string         `gorm:"column:external_id;not null;uniqueIndex:users_external_id_key"`
	Email      string         `gorm:"column:email;not null"`
	Name       *string        `gorm:"column:name"`
	ImageURL   *string        `gorm:"column:image_url"`
	Phone      *string        `gorm:"column:phone"`
	Role       enums.UserRole `gorm:"column:role;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = enums.UserRoleUser
	}
	return nil
}
