package cars

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/internal/dealership"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/db/dbtest"
	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/enums"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeDealership struct{}

func (fakeDealership) Info(context.Context) (dealership.DealershipDTO, error) {
	return dealership.DealershipDTO{Name: "AutoYard Motors"}, nil
}

type fakeBlobs struct {
	removed []string
	err     error
}

func (f *fakeBlobs) Remove(_ context.Context, paths ...string) error {
	f.removed = append(f.removed, paths...)
	return f.err
}

func (f *fakeBlobs) ObjectPathFromURL(raw string) (string, bool) {
	const prefix = "https://storage.googleapis.com/cars-images/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	return strings.TrimPrefix(raw, prefix), true
}

var errStorageDown = errors.New("storage unavailable")

type fixture struct {
	db    *gorm.DB
	svc   Service
	blobs *fakeBlobs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	blobs := &fakeBlobs{}
	svc, err := NewService(ServiceParams{
		Repo:       NewRepository(conn),
		Dealership: fakeDealership{},
		Blobs:      blobs,
	})
	require.NoError(t, err)
	return &fixture{db: conn, svc: svc, blobs: blobs}
}

type carOpt func(*models.Car)

func withStatus(s enums.CarStatus) carOpt { return func(c *models.Car) { c.Status = s } }
func featured() carOpt                   { return func(c *models.Car) { c.Featured = true } }
func withDescription(d string) carOpt    { return func(c *models.Car) { c.Description = d } }
func withBody(b string) carOpt           { return func(c *models.Car) { c.BodyType = b } }

// mustCreateCar inserts a car created minutesAgo before baseTime.
func (f *fixture) mustCreateCar(t *testing.T, carMake, model string, price int64, minutesAgo int, opts ...carOpt) models.Car {
	t.Helper()
	car := models.Car{
		Make:         carMake,
		Model:        model,
		Year:         2020,
		Price:        decimal.NewFromInt(price),
		Mileage:      42000,
		Color:        "Blue",
		FuelType:     "Petrol",
		Transmission: "Automatic",
		BodyType:     "Sedan",
		Description:  "clean title",
		Confidence:   0.9,
		Status:       enums.CarStatusAvailable,
		Images:       pq.StringArray{"https://storage.googleapis.com/cars-images/cars/" + uuid.NewString() + "/image-1-0.jpg"},
		CreatedAt:    baseTime.Add(-time.Duration(minutesAgo) * time.Minute),
	}
	for _, opt := range opts {
		opt(&car)
	}
	require.NoError(t, f.db.Create(&car).Error)
	return car
}

func (f *fixture) mustCreateUser(t *testing.T, role enums.UserRole) *users.Actor {
	t.Helper()
	user := models.User{
		ExternalID: "user_" + uuid.NewString(),
		Email:      uuid.NewString() + "@example.com",
		Role:       role,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return &users.Actor{UserID: user.ID, ExternalID: user.ExternalID, Role: role}
}

func (f *fixture) mustSave(t *testing.T, actor *users.Actor, carID uuid.UUID) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.SavedCar{UserID: actor.UserID, CarID: carID}).Error)
}
