package cars

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/enums"
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

func (r *Repository) Create(ctx context.Context, car *models.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&car).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

// Search counts and fetches one page. Both queries start from the same
// predicate so total always agrees with the rows that can be paged through.
func (r *Repository) Search(ctx context.Context, c SearchCriteria) ([]models.Car, int64, error) {
	var total int64
	if err := r.searchScope(ctx, c).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Car{}, 0, nil
	}

	var rows []models.Car
	q := r.searchScope(ctx, c).
		Offset(c.Pagination.Offset()).
		Limit(c.Pagination.Limit())
	for _, clause := range orderFor(c.SortBy) {
		q = q.Order(clause)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) searchScope(ctx context.Context, c SearchCriteria) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Car{}).Where("status = ?", enums.CarStatusAvailable)

	if c.Search != "" {
		pattern := likePattern(c.Search)
		q = q.Where(
			`(LOWER(make) LIKE ? ESCAPE '\' OR LOWER(model) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	equals := []struct{ column, value string }{
		{"make", c.Make},
		{"body_type", c.BodyType},
		{"transmission", c.Transmission},
		{"fuel_type", c.FuelType},
	}
	for _, f := range equals {
		if f.value != "" {
			q = q.Where("LOWER("+f.column+") = ?", strings.ToLower(f.value))
		}
	}
	q = q.Where("price >= ?", c.MinPrice)
	if c.MaxPrice != nil {
		q = q.Where("price <= ?", *c.MaxPrice)
	}
	return q
}

func orderFor(sort enums.CarSort) []string {
	switch sort {
	case enums.CarSortPriceAsc:
		return []string{"price ASC", "created_at DESC", "id ASC"}
	case enums.CarSortPriceDesc:
		return []string{"price DESC", "created_at DESC", "id ASC"}
	default:
		return []string{"created_at DESC", "id ASC"}
	}
}

// likePattern lower-cases s and escapes LIKE wildcards so user input matches
// literally.
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// Featured returns available featured cars, newest first.
func (r *Repository) Featured(ctx context.Context, limit int) ([]models.Car, error) {
	var rows []models.Car
	err := r.db.WithContext(ctx).
		Where("status = ? AND featured = ?", enums.CarStatusAvailable, true).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListAll returns every car regardless of status. search matches make, model
// or color.
func (r *Repository) ListAll(ctx context.Context, search string) ([]models.Car, error) {
	q := r.db.WithContext(ctx).Model(&models.Car{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := likePattern(search)
		q = q.Where(
			`(LOWER(make) LIKE ? ESCAPE '\' OR LOWER(model) LIKE ? ESCAPE '\' OR LOWER(color) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	var rows []models.Car
	err := q.Order("created_at DESC").Order("id ASC").Find(&rows).Error
	return rows, err
}

// Facets is the raw aggregation over available cars.
type Facets struct {
	Makes         []string
	BodyTypes     []string
	FuelTypes     []string
	Transmissions []string
	MinPrice      decimal.NullDecimal
	MaxPrice      decimal.NullDecimal
}

func (r *Repository) Facets(ctx context.Context) (Facets, error) {
	var out Facets
	targets := []struct {
		column string
		dest   *[]string
	}{
		{"make", &out.Makes},
		{"body_type", &out.BodyTypes},
		{"fuel_type", &out.FuelTypes},
		{"transmission", &out.Transmissions},
	}
	for _, t := range targets {
		err := r.available(ctx).
			Distinct(t.column).
			Order(t.column + " ASC").
			Pluck(t.column, t.dest).Error
		if err != nil {
			return Facets{}, err
		}
	}

	var bounds struct {
		MinPrice decimal.NullDecimal
		MaxPrice decimal.NullDecimal
	}
	if err := r.available(ctx).
		Select("MIN(price) AS min_price, MAX(price) AS max_price").
		Scan(&bounds).Error; err != nil {
		return Facets{}, err
	}
	out.MinPrice = bounds.MinPrice
	out.MaxPrice = bounds.MaxPrice
	return out, nil
}

func (r *Repository) available(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Car{}).Where("status = ?", enums.CarStatusAvailable)
}

// WishlistedIDs returns which of carIDs the user has saved.
func (r *Repository) WishlistedIDs(ctx context.Context, userID uuid.UUID, carIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(carIDs))
	if len(carIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.SavedCar{}).
		Where("user_id = ? AND car_id IN ?", userID, carIDs).
		Pluck("car_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// UpdateFields applies a partial update and reports whether a row matched.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Car{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Car{}).Error
}
