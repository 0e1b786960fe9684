package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedCar links a user to a wishlisted listing.
type SavedCar struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:saved_cars_user_car_key"`
	CarID   uuid.UUID `gorm:"column:car_id;type:uuid;not null;index:saved_cars_car_id_idx;uniqueIndex:saved_cars_user_car_key"`
	SavedAt time.Time `gorm:"column:saved_at;autoCreateTime"`
}

func (SavedCar) TableName() string { return "saved_cars" }

func (s *SavedCar) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
