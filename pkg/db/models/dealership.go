package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/pkg/enums"
)

// DealershipInfo is the single showroom record shown on detail pages.
type DealershipInfo struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name         string        `gorm:"column:name;not null"`
	Address      string        `gorm:"column:address;not null"`
	Phone        string        `gorm:"column:phone;not null"`
	Email        string        `gorm:"column:email;not null"`
	WorkingHours []WorkingHour `gorm:"foreignKey:DealershipID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (DealershipInfo) TableName() string { return "dealership_infos" }

func (d *DealershipInfo) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// WorkingHour is one day's opening window. Times are "HH:MM".
type WorkingHour struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	DealershipID uuid.UUID       `gorm:"column:dealership_id;type:uuid;not null;uniqueIndex:working_hours_dealership_day_key"`
	DayOfWeek    enums.DayOfWeek `gorm:"column:day_of_week;not null;uniqueIndex:working_hours_dealership_day_key"`
	OpenTime     string          `gorm:"column:open_time;not null"`
	CloseTime    string          `gorm:"column:close_time;not null"`
	IsOpen       bool            `gorm:"column:is_open;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkingHour) TableName() string { return "working_hours" }

func (w *WorkingHour) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
