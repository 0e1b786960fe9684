package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/internal/cars"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/cache"
	"github.com/autoyard/autoyard-backend/pkg/cache/cachetest"
	"github.com/autoyard/autoyard-backend/pkg/db"
	"github.com/autoyard/autoyard-backend/pkg/db/dbtest"
	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/enums"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
)

type fixture struct {
	db    *gorm.DB
	repo  *Repository
	svc   Service
	store *cachetest.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	store := cachetest.NewMemoryStore()
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		CarRepo: cars.NewRepository(conn),
		Tx:      db.Wrap(conn),
		Views:   cache.NewViews(store, nil, nil),
	})
	require.NoError(t, err)
	return &fixture{db: conn, repo: repo, svc: svc, store: store}
}

func (f *fixture) mustCreateCar(t *testing.T, model string) models.Car {
	t.Helper()
	car := models.Car{
		Make:         "Hyundai",
		Model:        model,
		Year:         2022,
		Price:        decimal.NewFromInt(23000),
		Mileage:      9000,
		Color:        "White",
		FuelType:     "Hybrid",
		Transmission: "Automatic",
		BodyType:     "SUV",
		Description:  "one owner",
		Images:       pq.StringArray{"https://storage.googleapis.com/cars-images/cars/x/image-1-0.jpg"},
	}
	require.NoError(t, f.db.Create(&car).Error)
	return car
}

func (f *fixture) mustCreateActor(t *testing.T) *users.Actor {
	t.Helper()
	user := models.User{ExternalID: "user_" + uuid.NewString(), Email: uuid.NewString() + "@example.com", Role: enums.UserRoleUser}
	require.NoError(t, f.db.Create(&user).Error)
	return &users.Actor{UserID: user.ID, ExternalID: user.ExternalID, Role: user.Role}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	car := f.mustCreateCar(t, "Tucson")
	actor := f.mustCreateActor(t)

	first, err := f.svc.Toggle(ctx, actor, car.ID)
	require.NoError(t, err)
	assert.True(t, first.Saved)
	n, err := f.repo.Count(ctx, actor.UserID, car.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	second, err := f.svc.Toggle(ctx, actor, car.ID)
	require.NoError(t, err)
	assert.False(t, second.Saved)
	n, err = f.repo.Count(ctx, actor.UserID, car.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestToggleErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	car := f.mustCreateCar(t, "Kona")

	_, err := f.svc.Toggle(ctx, nil, car.ID)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = f.svc.Toggle(ctx, f.mustCreateActor(t), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAddIgnoresDuplicatePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	car := f.mustCreateCar(t, "Ioniq")
	actor := f.mustCreateActor(t)

	require.NoError(t, f.repo.Add(ctx, actor.UserID, car.ID))
	require.NoError(t, f.repo.Add(ctx, actor.UserID, car.ID))
	n, err := f.repo.Count(ctx, actor.UserID, car.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListSavedNewestFirstAndInvalidatedByToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.mustCreateActor(t)
	older := f.mustCreateCar(t, "i20")
	newer := f.mustCreateCar(t, "i30")

	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&models.SavedCar{UserID: actor.UserID, CarID: older.ID, SavedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, f.db.Create(&models.SavedCar{UserID: actor.UserID, CarID: newer.ID, SavedAt: now}).Error)

	saved, err := f.svc.ListSaved(ctx, actor)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, newer.ID, saved[0].ID)
	assert.Equal(t, older.ID, saved[1].ID)
	for _, car := range saved {
		assert.True(t, car.IsWishlisted)
	}
	assert.Equal(t, 1, f.store.Len(), "snapshot cached")

	_, err = f.svc.Toggle(ctx, actor, newer.ID)
	require.NoError(t, err)

	saved, err = f.svc.ListSaved(ctx, actor)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, older.ID, saved[0].ID)
}

func TestListSavedRequiresActor(t *testing.T) {
	_, err := newFixture(t).svc.ListSaved(context.Background(), nil)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestToggleDuringSavedListComputeIsNotMasked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.mustCreateActor(t)
	car := f.mustCreateCar(t, "Kona")
	views := cache.NewViews(f.store, nil, nil)

	_, err := cache.Load(ctx, views, cache.ViewSavedCars, actor.UserID.String(), time.Minute, func(ctx context.Context) ([]cars.CarDTO, error) {
		rows, err := f.repo.ListCars(ctx, actor.UserID)
		require.NoError(t, err)
		require.Empty(t, rows)

		_, err = f.svc.Toggle(ctx, actor, car.ID)
		require.NoError(t, err)
		return []cars.CarDTO{}, nil
	})
	require.NoError(t, err)

	saved, err := f.svc.ListSaved(ctx, actor)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, car.ID, saved[0].ID)
}
