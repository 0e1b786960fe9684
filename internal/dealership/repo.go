package dealership

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// First returns the oldest dealership record with its hours.
func (r *Repository) First(ctx context.Context) (*models.DealershipInfo, error) {
	var info models.DealershipInfo
	err := r.db.WithContext(ctx).
		Preload("WorkingHours").
		Order("created_at ASC").
		First(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Create inserts the record and any hours attached to it.
func (r *Repository) Create(ctx context.Context, info *models.DealershipInfo) error {
	return r.db.WithContext(ctx).Create(info).Error
}

// ReplaceHours deletes every hour row of the dealership and inserts hours.
func (r *Repository) ReplaceHours(ctx context.Context, dealershipID uuid.UUID, hours []models.WorkingHour) error {
	if err := r.db.WithContext(ctx).
		Where("dealership_id = ?", dealershipID).
		Delete(&models.WorkingHour{}).Error; err != nil {
		return err
	}
	if len(hours) == 0 {
		return nil
	}
	for i := range hours {
		hours[i].DealershipID = dealershipID
	}
	return r.db.WithContext(ctx).Create(&hours).Error
}
