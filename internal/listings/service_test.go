package listings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/internal/cars"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/cache/cachetest"
	"github.com/autoyard/autoyard-backend/pkg/db/dbtest"
	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/enums"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
)

const pngURI = "data:image/png;base64,aGVsbG8="

var admin = &users.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}

type fakeModel struct {
	answer string
	err    error
	calls  int
}

func (m *fakeModel) Generate(context.Context, string, []byte, string) (string, error) {
	m.calls++
	return m.answer, m.err
}

type fakeBlobs struct {
	exists    bool
	existsErr error
	failAt    int
	uploads   []string
	types     []string
	removed   []string
	removeErr error
}

func (b *fakeBlobs) Bucket() string { return "cars-images" }

func (b *fakeBlobs) BucketExists(context.Context) (bool, error) { return b.exists, b.existsErr }

func (b *fakeBlobs) Upload(_ context.Context, path, contentType string, _ []byte) (string, error) {
	if b.failAt > 0 && len(b.uploads)+1 == b.failAt {
		return "", errors.New("upload refused")
	}
	b.uploads = append(b.uploads, path)
	b.types = append(b.types, contentType)
	return "https://storage.googleapis.com/cars-images/" + path, nil
}

func (b *fakeBlobs) Remove(_ context.Context, paths ...string) error {
	b.removed = append(b.removed, paths...)
	return b.removeErr
}

func validInput() CarInput {
	seats := 5
	return CarInput{
		Make: "Toyota", Model: "Corolla", Year: 2019, Price: 15500.499, Mileage: 48000,
		Color: "Silver", FuelType: "Petrol", Transmission: "Automatic", BodyType: "Sedan",
		Seats: &seats, Description: "Reliable", Confidence: 0.8,
	}
}

func newService(t *testing.T, conn *gorm.DB, model *fakeModel, blobs *fakeBlobs, store *cachetest.MemoryStore) Service {
	t.Helper()
	params := ServiceParams{
		Blobs:   blobs,
		CarRepo: cars.NewRepository(conn),
		Now:     func() time.Time { return time.UnixMilli(1700000000000) },
	}
	if model != nil {
		params.Model = model
	}
	if store != nil {
		params.Cache = store
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc
}

func countCars(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.Car{}).Count(&n).Error)
	return n
}

func TestExtractWithoutModelIsConfigurationError(t *testing.T) {
	svc := newService(t, dbtest.Open(t), nil, &fakeBlobs{}, nil)
	_, err := svc.Extract(context.Background(), []byte("img"), "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConfiguration, pkgerrors.As(err).Code())
}

func TestExtractTransportFailureIsDependencyError(t *testing.T) {
	model := &fakeModel{err: errors.New("connection reset")}
	svc := newService(t, dbtest.Open(t), model, &fakeBlobs{}, nil)

	_, err := svc.Extract(context.Background(), []byte("img"), "image/jpeg")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
	assert.Equal(t, "AI service error", typed.Message())
	assert.ErrorIs(t, err, model.err, "cause stays attached for diagnostics")
}

func TestExtractCachesSuccessfulAnswers(t *testing.T) {
	ctx := context.Background()
	model := &fakeModel{answer: fullAnswer}
	store := cachetest.NewMemoryStore()
	svc := newService(t, dbtest.Open(t), model, &fakeBlobs{}, store)

	first, err := svc.Extract(ctx, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	second, err := svc.Extract(ctx, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, model.calls)

	found, err := svc.SearchByImage(ctx, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Toyota", found.Make)
	assert.Equal(t, 2, model.calls, "search answers are cached under their own key")
}

func TestExtractDoesNotCacheRejectedAnswers(t *testing.T) {
	ctx := context.Background()
	model := &fakeModel{answer: `{"make":"Ford"}`}
	store := cachetest.NewMemoryStore()
	svc := newService(t, dbtest.Open(t), model, &fakeBlobs{}, store)

	_, err := svc.Extract(ctx, []byte("img"), "image/png")
	require.Error(t, err)
	assert.Zero(t, store.Len())
}

func TestCreateUploadsInOrderAndInserts(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	blobs := &fakeBlobs{exists: true}
	svc := newService(t, conn, nil, blobs, nil)

	car, err := svc.Create(ctx, admin, validInput(), []string{"not-an-image", pngURI, "data:image/webp;base64,d29ybGQ="})
	require.NoError(t, err)

	require.Len(t, blobs.uploads, 2)
	prefix := "cars/" + car.ID.String() + "/image-1700000000000-"
	assert.Equal(t, prefix+"1.png", blobs.uploads[0])
	assert.Equal(t, prefix+"2.webp", blobs.uploads[1])
	assert.Equal(t, []string{
		"https://storage.googleapis.com/cars-images/" + blobs.uploads[0],
		"https://storage.googleapis.com/cars-images/" + blobs.uploads[1],
	}, car.Images)
	assert.Equal(t, 15500.5, car.Price)
	assert.Equal(t, "AVAILABLE", car.Status)

	var stored models.Car
	require.NoError(t, conn.Where("id = ?", car.ID).First(&stored).Error)
	assert.Equal(t, []string(stored.Images), car.Images)
}

func TestCreateWithoutValidImagesTouchesNothing(t *testing.T) {
	conn := dbtest.Open(t)
	blobs := &fakeBlobs{exists: true}
	svc := newService(t, conn, nil, blobs, nil)

	_, err := svc.Create(context.Background(), admin, validInput(), []string{"https://x/y.jpg", ""})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, blobs.uploads)
	assert.Zero(t, countCars(t, conn))
}

func TestCreateMissingBucketFailsBeforeUpload(t *testing.T) {
	conn := dbtest.Open(t)
	blobs := &fakeBlobs{exists: false}
	svc := newService(t, conn, nil, blobs, nil)

	_, err := svc.Create(context.Background(), admin, validInput(), []string{pngURI})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConfiguration, pkgerrors.As(err).Code())
	assert.Empty(t, blobs.uploads)
	assert.Zero(t, countCars(t, conn))
}

func TestCreateUploadFailureRemovesEarlierBlobs(t *testing.T) {
	conn := dbtest.Open(t)
	blobs := &fakeBlobs{exists: true, failAt: 3, removeErr: errors.New("remove refused")}
	svc := newService(t, conn, nil, blobs, nil)

	_, err := svc.Create(context.Background(), admin, validInput(), []string{pngURI, pngURI, pngURI})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
	assert.Equal(t, "upload image", typed.Message(), "cleanup failures never replace the original error")
	assert.Equal(t, blobs.uploads, blobs.removed)
	assert.Len(t, blobs.removed, 2)
	assert.Zero(t, countCars(t, conn))
}

func TestCreateInsertFailureRemovesBlobs(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:listings_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	blobs := &fakeBlobs{exists: true}
	svc := newService(t, conn, nil, blobs, nil)

	_, err = svc.Create(context.Background(), admin, validInput(), []string{pngURI})
	require.Error(t, err)
	assert.Equal(t, "create car", pkgerrors.As(err).Message())
	assert.Len(t, blobs.removed, 1)
	assert.True(t, strings.HasPrefix(blobs.removed[0], "cars/"))
}

func TestCreateKeepsDeclaredTypeForOddSubtypes(t *testing.T) {
	conn := dbtest.Open(t)
	blobs := &fakeBlobs{exists: true}
	svc := newService(t, conn, nil, blobs, nil)

	_, err := svc.Create(context.Background(), admin, validInput(), []string{"data:image/svg+xml;base64,aGVsbG8="})
	require.NoError(t, err)
	require.Len(t, blobs.uploads, 1)
	assert.True(t, strings.HasSuffix(blobs.uploads[0], "-0.jpg"))
	assert.Equal(t, []string{"image/svg+xml"}, blobs.types)
}

func TestCreateRejectsPriceBeyondColumnRange(t *testing.T) {
	conn := dbtest.Open(t)
	blobs := &fakeBlobs{exists: true}
	svc := newService(t, conn, nil, blobs, nil)

	input := validInput()
	input.Price = 1e9
	_, err := svc.Create(context.Background(), admin, input, []string{pngURI})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, blobs.uploads)
	assert.Zero(t, countCars(t, conn))
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc := newService(t, dbtest.Open(t), nil, &fakeBlobs{exists: true}, nil)
	_, err := svc.Create(context.Background(), &users.Actor{UserID: uuid.New(), Role: enums.UserRoleUser}, validInput(), []string{pngURI})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

type gatedModel struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (m *gatedModel) Generate(context.Context, string, []byte, string) (string, error) {
	if m.calls.Add(1) == 1 {
		close(m.entered)
	}
	<-m.release
	return fullAnswer, nil
}

func TestExtractSharesConcurrentModelCalls(t *testing.T) {
	model := &gatedModel{entered: make(chan struct{}), release: make(chan struct{})}
	svc, err := NewService(ServiceParams{
		Blobs:   &fakeBlobs{},
		CarRepo: cars.NewRepository(dbtest.Open(t)),
		Model:   model,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]ExtractedListing, 2)
	errs := make([]error, 2)
	run := func(i int) {
		defer wg.Done()
		results[i], errs[i] = svc.Extract(context.Background(), []byte("same-image"), "image/jpeg")
	}

	wg.Add(1)
	go run(0)
	<-model.entered
	wg.Add(1)
	go run(1)
	time.Sleep(50 * time.Millisecond)
	close(model.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), model.calls.Load())
	assert.Equal(t, results[0], results[1])
}
