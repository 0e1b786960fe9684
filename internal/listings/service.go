package listings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/autoyard/autoyard-backend/internal/cars"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/cache"
	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/enums"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/logger"
	"github.com/autoyard/autoyard-backend/pkg/metrics"
	"github.com/autoyard/autoyard-backend/pkg/redis"
	"github.com/autoyard/autoyard-backend/pkg/vision"
)

const (
	kindListing = "listing"
	kindSearch  = "search"
)

// BlobStore is the slice of object storage listing creation needs.
type BlobStore interface {
	Bucket() string
	BucketExists(ctx context.Context) (bool, error)
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, objectPaths ...string) error
}

// ExtractionCache remembers model answers per image digest.
type ExtractionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ExtractionKey(kind, digest string) string
}

type ServiceParams struct {
	// Model may be nil when no API key is configured; extraction then fails
	// with a configuration error instead of the whole server refusing to start.
	Model    vision.Model
	Blobs    BlobStore
	CarRepo  *cars.Repository
	Cache    ExtractionCache
	CacheTTL time.Duration
	Views    *cache.Views
	Metrics  *metrics.IngestionMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service covers listing ingestion: AI-assisted drafts and creation.
type Service interface {
	Extract(ctx context.Context, image []byte, mimeType string) (ExtractedListing, error)
	SearchByImage(ctx context.Context, image []byte, mimeType string) (ImageSearchResult, error)
	Create(ctx context.Context, actor *users.Actor, input CarInput, images []string) (cars.CarDTO, error)
}

type service struct {
	model    vision.Model
	blobs    BlobStore
	carRepo  *cars.Repository
	cache    ExtractionCache
	cacheTTL time.Duration
	views    *cache.Views
	metrics  *metrics.IngestionMetrics
	logg     *logger.Logger
	now      func() time.Time
	inflight singleflight.Group
}

func NewService(params ServiceParams) (Service, error) {
	if params.Blobs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "blob store is required")
	}
	if params.CarRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{
		model:    params.Model,
		blobs:    params.Blobs,
		carRepo:  params.CarRepo,
		cache:    params.Cache,
		cacheTTL: ttl,
		views:    params.Views,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Extract(ctx context.Context, image []byte, mimeType string) (ExtractedListing, error) {
	return extract(ctx, s, kindListing, vision.ListingPrompt, image, mimeType, parseListing)
}

func (s *service) SearchByImage(ctx context.Context, image []byte, mimeType string) (ImageSearchResult, error) {
	return extract(ctx, s, kindSearch, vision.SearchPrompt, image, mimeType, parseSearch)
}

// extract makes one model call per image digest; successful answers are
// cached, failures are not. There are no retries.
func extract[T any](ctx context.Context, s *service, kind, prompt string, image []byte, mimeType string, parse func(string) (T, error)) (T, error) {
	var zero T
	if s.model == nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeConfiguration, vision.ErrMissingAPIKey, "AI extraction is not configured")
	}
	if len(image) == 0 {
		return zero, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}

	sum := sha256.Sum256(image)
	digest := hex.EncodeToString(sum[:])
	key := ""
	if s.cache != nil {
		key = s.cache.ExtractionKey(kind, digest)
		if cached, ok := readCached[T](ctx, s, key); ok {
			return cached, nil
		}
	}

	// Concurrent requests for the same image share one model call.
	v, err, _ := s.inflight.Do(kind+":"+digest, func() (any, error) {
		return generate(ctx, s, kind, prompt, key, image, mimeType, parse)
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func generate[T any](ctx context.Context, s *service, kind, prompt, key string, image []byte, mimeType string, parse func(string) (T, error)) (T, error) {
	var zero T
	started := time.Now()
	text, err := s.model.Generate(ctx, prompt, image, mimeType)
	if err != nil {
		s.metrics.ObserveExtraction(kind, metrics.OutcomeFailure, time.Since(started))
		if errors.Is(err, vision.ErrMissingAPIKey) {
			return zero, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "AI extraction is not configured")
		}
		return zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "AI service error")
	}
	result, err := parse(text)
	if err != nil {
		s.metrics.ObserveExtraction(kind, metrics.OutcomeFailure, time.Since(started))
		s.warn(ctx, "ai.extraction_rejected", map[string]any{"kind": kind, "error": err.Error()})
		return zero, err
	}
	s.metrics.ObserveExtraction(kind, metrics.OutcomeSuccess, time.Since(started))

	if key != "" {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
				s.warn(ctx, "ai.cache_write_failed", map[string]any{"kind": kind, "error": err.Error()})
			}
		}
	}
	return result, nil
}

func readCached[T any](ctx context.Context, s *service, key string) (T, bool) {
	var out T
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.warn(ctx, "ai.cache_read_failed", map[string]any{"error": err.Error()})
		}
		return out, false
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false
	}
	return out, true
}

// Create uploads the images under a fresh listing id and inserts the listing.
// Blobs uploaded by this call are removed again if a later step fails.
func (s *service) Create(ctx context.Context, actor *users.Actor, input CarInput, images []string) (cars.CarDTO, error) {
	if err := users.RequireAdmin(actor); err != nil {
		return cars.CarDTO{}, err
	}
	car, err := carFromInput(input)
	if err != nil {
		return cars.CarDTO{}, err
	}
	decoded := decodeImages(images)
	if len(decoded) == 0 {
		return cars.CarDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "no valid images uploaded")
	}

	exists, err := s.blobs.BucketExists(ctx)
	if err != nil {
		return cars.CarDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check storage bucket")
	}
	if !exists {
		return cars.CarDTO{}, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("storage bucket %q not found", s.blobs.Bucket()))
	}

	car.ID = uuid.New()
	ctx = s.withCar(ctx, car.ID)
	stamp := s.now().UnixMilli()
	uploaded := make([]string, 0, len(decoded))
	urls := make(pq.StringArray, 0, len(decoded))
	for _, img := range decoded {
		path := fmt.Sprintf("cars/%s/image-%d-%d.%s", car.ID, stamp, img.index, img.ext)
		url, err := s.blobs.Upload(ctx, path, img.contentType, img.data)
		if err != nil {
			s.metrics.IncUpload(metrics.OutcomeFailure)
			s.compensate(ctx, uploaded)
			return cars.CarDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
		}
		s.metrics.IncUpload(metrics.OutcomeSuccess)
		uploaded = append(uploaded, path)
		urls = append(urls, url)
	}
	car.Images = urls

	if err := s.carRepo.Create(ctx, car); err != nil {
		s.compensate(ctx, uploaded)
		return cars.CarDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create car")
	}
	s.views.InvalidateView(ctx, cache.ViewAdminInventory)

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "images", len(urls)), "car.created")
	}
	return cars.FromModel(*car, false), nil
}

// compensate removes blobs uploaded by a failed create. Failures are logged;
// the caller keeps reporting the original error.
func (s *service) compensate(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	s.metrics.IncCompensation()
	var errs error
	for _, path := range paths {
		errs = multierr.Append(errs, s.blobs.Remove(ctx, path))
	}
	if errs != nil {
		s.warn(ctx, "car.upload_compensation_failed", map[string]any{
			"failed": len(multierr.Errors(errs)),
			"error":  errs.Error(),
		})
	}
}

// maxListingPrice is the largest value the numeric(10,2) price column holds.
var maxListingPrice = decimal.RequireFromString("99999999.99")

func carFromInput(input CarInput) (*models.Car, error) {
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	price := decimal.NewFromFloat(input.Price).Round(2)
	if price.GreaterThan(maxListingPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not exceed 99999999.99")
	}
	if input.Confidence < 0 || input.Confidence > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confidence must be between 0 and 1")
	}
	status := enums.CarStatusAvailable
	if input.Status != "" {
		parsed, err := enums.ParseCarStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = parsed
	}
	return &models.Car{
		Make:         input.Make,
		Model:        input.Model,
		Year:         input.Year,
		Price:        price,
		Mileage:      input.Mileage,
		Color:        input.Color,
		FuelType:     input.FuelType,
		Transmission: input.Transmission,
		BodyType:     input.BodyType,
		Seats:        input.Seats,
		Description:  input.Description,
		Confidence:   input.Confidence,
		Status:       status,
		Featured:     input.Featured,
	}, nil
}

func (s *service) withCar(ctx context.Context, id uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithCarID(ctx, id.String())
}

func (s *service) warn(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), msg)
}
