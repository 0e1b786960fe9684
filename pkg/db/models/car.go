package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/pkg/enums"
)

// Car is a vehicle listing in the dealership inventory.
type Car struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Make         string          `gorm:"column:make;not null"`
	Model        string          `gorm:"column:model;not null"`
	Year         int             `gorm:"column:year;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Mileage      int             `gorm:"column:mileage;not null"`
	Color        string          `gorm:"column:color;not null"`
	FuelType     string          `gorm:"column:fuel_type;not null"`
	Transmission string          `gorm:"column:transmission;not null"`
	BodyType     string          `gorm:"column:body_type;not null"`
	Seats        *int            `gorm:"column:seats"`
	Description  string          `gorm:"column:description;not null"`
	Confidence   float64         `gorm:"column:confidence;not null;default:0"`
	Status       enums.CarStatus `gorm:"column:status;not null"`
	Featured     bool            `gorm:"column:featured;not null;default:false"`
	Images       pq.StringArray  `gorm:"column:images;type:text[];not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Car) TableName() string { return "cars" }

// BeforeCreate assigns an id when the caller did not pick one.
func (c *Car) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = enums.CarStatusAvailable
	}
	return nil
}
