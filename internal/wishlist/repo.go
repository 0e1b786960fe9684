package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/autoyard/autoyard-backend/pkg/db/models"
)

// Repository encapsulates saved-car persistence.
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

// Remove deletes the (user, car) entry and reports how many rows went away.
func (r *Repository) Remove(ctx context.Context, userID, carID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND car_id = ?", userID, carID).
		Delete(&models.SavedCar{})
	return res.RowsAffected, res.Error
}

// Add inserts the entry; a concurrent insert of the same pair is a no-op.
func (r *Repository) Add(ctx context.Context, userID, carID uuid.UUID) error {
	entry := &models.SavedCar{UserID: userID, CarID: carID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "car_id"}},
			DoNothing: true,
		}).
		Create(entry).Error
}

func (r *Repository) Count(ctx context.Context, userID, carID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.SavedCar{}).
		Where("user_id = ? AND car_id = ?", userID, carID).
		Count(&n).Error
	return n, err
}

// ListCars returns the user's saved cars, most recently saved first.
func (r *Repository) ListCars(ctx context.Context, userID uuid.UUID) ([]models.Car, error) {
	var rows []models.Car
	err := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Select("cars.*").
		Joins("JOIN saved_cars ON saved_cars.car_id = cars.id").
		Where("saved_cars.user_id = ?", userID).
		Order("saved_cars.saved_at DESC").
		Order("cars.id ASC").
		Find(&rows).Error
	return rows, err
}
