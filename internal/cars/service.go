package cars

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/internal/dealership"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/cache"
	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/enums"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/logger"
	"github.com/autoyard/autoyard-backend/pkg/pagination"
)

const (
	FeaturedLimit = 3

	defaultMinPrice = 0
	defaultMaxPrice = 100000
)

// DealershipReader supplies the dealership block of the car detail page.
type DealershipReader interface {
	Info(ctx context.Context) (dealership.DealershipDTO, error)
}

// BlobRemover deletes stored listing images.
type BlobRemover interface {
	Remove(ctx context.Context, objectPaths ...string) error
	ObjectPathFromURL(raw string) (string, bool)
}

type ServiceParams struct {
	Repo       *Repository
	Dealership DealershipReader
	Blobs      BlobRemover
	Views      *cache.Views
	AdminTTL   time.Duration
	Logger     *logger.Logger
}

// Service is the read side of the inventory plus admin status changes and
// deletion.
type Service interface {
	Search(ctx context.Context, actor *users.Actor, criteria SearchCriteria) (SearchResult, error)
	Facets(ctx context.Context) (FacetsDTO, error)
	Featured(ctx context.Context, actor *users.Actor) ([]CarDTO, error)
	GetCar(ctx context.Context, actor *users.Actor, carID uuid.UUID) (CarDetailDTO, error)
	ListAdmin(ctx context.Context, actor *users.Actor, search string) ([]CarDTO, error)
	UpdateStatus(ctx context.Context, actor *users.Actor, carID uuid.UUID, update StatusUpdate) (CarDTO, error)
	Delete(ctx context.Context, actor *users.Actor, carID uuid.UUID) error
}

type service struct {
	repo       *Repository
	dealership DealershipReader
	blobs      BlobRemover
	views      *cache.Views
	adminTTL   time.Duration
	logg       *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cars repo is required")
	}
	if params.Dealership == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealership reader is required")
	}
	if params.Blobs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "blob remover is required")
	}
	ttl := params.AdminTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:       params.Repo,
		dealership: params.Dealership,
		blobs:      params.Blobs,
		views:      params.Views,
		adminTTL:   ttl,
		logg:       params.Logger,
	}, nil
}

func (s *service) Search(ctx context.Context, actor *users.Actor, criteria SearchCriteria) (SearchResult, error) {
	c := criteria.normalized()
	if c.emptyRange() {
		return SearchResult{Items: []CarDTO{}, Pagination: pagination.Build(c.Pagination, 0)}, nil
	}

	rows, total, err := s.repo.Search(ctx, c)
	if err != nil {
		return SearchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query failed")
	}
	items, err := s.annotate(ctx, actor, rows)
	if err != nil {
		return SearchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query failed")
	}
	return SearchResult{Items: items, Pagination: pagination.Build(c.Pagination, total)}, nil
}

func (s *service) Facets(ctx context.Context) (FacetsDTO, error) {
	f, err := s.repo.Facets(ctx)
	if err != nil {
		return FacetsDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load filters")
	}
	out := FacetsDTO{
		Makes:         nonNil(f.Makes),
		BodyTypes:     nonNil(f.BodyTypes),
		FuelTypes:     nonNil(f.FuelTypes),
		Transmissions: nonNil(f.Transmissions),
		PriceRange:    PriceRange{Min: defaultMinPrice, Max: defaultMaxPrice},
	}
	if f.MinPrice.Valid && f.MaxPrice.Valid {
		out.PriceRange = PriceRange{
			Min: f.MinPrice.Decimal.InexactFloat64(),
			Max: f.MaxPrice.Decimal.InexactFloat64(),
		}
	}
	return out, nil
}

func (s *service) Featured(ctx context.Context, actor *users.Actor) ([]CarDTO, error) {
	rows, err := s.repo.Featured(ctx, FeaturedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load featured cars")
	}
	items, err := s.annotate(ctx, actor, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load featured cars")
	}
	return items, nil
}

func (s *service) GetCar(ctx context.Context, actor *users.Actor, carID uuid.UUID) (CarDetailDTO, error) {
	car, err := s.load(ctx, carID)
	if err != nil {
		return CarDetailDTO{}, err
	}
	items, err := s.annotate(ctx, actor, []models.Car{*car})
	if err != nil {
		return CarDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist state")
	}
	info, err := s.dealership.Info(ctx)
	if err != nil {
		return CarDetailDTO{}, err
	}
	return CarDetailDTO{Car: items[0], IsWishlisted: items[0].IsWishlisted, Dealership: info}, nil
}

func (s *service) ListAdmin(ctx context.Context, actor *users.Actor, search string) ([]CarDTO, error) {
	if err := users.RequireAdmin(actor); err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	return cache.Load(ctx, s.views, cache.ViewAdminInventory, "q:"+search, s.adminTTL, func(ctx context.Context) ([]CarDTO, error) {
		rows, err := s.repo.ListAll(ctx, search)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cars")
		}
		out := make([]CarDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, FromModel(row, false))
		}
		return out, nil
	})
}

func (s *service) UpdateStatus(ctx context.Context, actor *users.Actor, carID uuid.UUID, update StatusUpdate) (CarDTO, error) {
	if err := users.RequireAdmin(actor); err != nil {
		return CarDTO{}, err
	}
	if update.Status == nil && update.Featured == nil {
		return CarDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "status or featured is required")
	}

	fields := map[string]any{}
	if update.Status != nil {
		status, err := enums.ParseCarStatus(strings.ToUpper(strings.TrimSpace(*update.Status)))
		if err != nil {
			return CarDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		fields["status"] = status
	}
	if update.Featured != nil {
		fields["featured"] = *update.Featured
	}

	matched, err := s.repo.UpdateFields(ctx, carID, fields)
	if err != nil {
		return CarDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update car")
	}
	if !matched {
		return CarDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "car not found")
	}
	s.invalidate(ctx)

	car, err := s.load(ctx, carID)
	if err != nil {
		return CarDTO{}, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(s.withCar(ctx, carID), fields), "car.updated")
	}
	return FromModel(*car, false), nil
}

// Delete removes the row first; images are cleaned up best effort afterwards
// so a storage outage never leaves a listing half deleted.
func (s *service) Delete(ctx context.Context, actor *users.Actor, carID uuid.UUID) error {
	if err := users.RequireAdmin(actor); err != nil {
		return err
	}
	car, err := s.load(ctx, carID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, carID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete car")
	}
	s.invalidate(ctx)

	ctx = s.withCar(ctx, carID)
	paths := make([]string, 0, len(car.Images))
	for _, url := range car.Images {
		if path, ok := s.blobs.ObjectPathFromURL(url); ok {
			paths = append(paths, path)
		}
	}
	if len(paths) > 0 {
		if err := s.blobs.Remove(ctx, paths...); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "car.images_cleanup_failed")
		}
	}
	if s.logg != nil {
		s.logg.Info(ctx, "car.deleted")
	}
	return nil
}

func (s *service) load(ctx context.Context, carID uuid.UUID) (*models.Car, error) {
	car, err := s.repo.FindByID(ctx, carID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "car not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load car")
	}
	return car, nil
}

func (s *service) annotate(ctx context.Context, actor *users.Actor, rows []models.Car) ([]CarDTO, error) {
	saved := map[uuid.UUID]bool{}
	if userID := users.UserIDOf(actor); userID != nil && len(rows) > 0 {
		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		var err error
		if saved, err = s.repo.WishlistedIDs(ctx, *userID, ids); err != nil {
			return nil, err
		}
	}
	out := make([]CarDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row, saved[row.ID]))
	}
	return out, nil
}

// invalidate drops cached views that embed car rows.
func (s *service) invalidate(ctx context.Context) {
	s.views.InvalidateView(ctx, cache.ViewAdminInventory)
	s.views.InvalidateView(ctx, cache.ViewSavedCars)
}

func (s *service) withCar(ctx context.Context, carID uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithCarID(ctx, carID.String())
}
