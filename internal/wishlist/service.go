package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/internal/cars"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/cache"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

// TxRunner runs fn in a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo     *Repository
	CarRepo  *cars.Repository
	Tx       TxRunner
	Views    *cache.Views
	SavedTTL time.Duration
	Logger   *logger.Logger
}

type ToggleResult struct {
	Saved bool `json:"saved"`
}

// Service exposes the saved-cars feature.
type Service interface {
	Toggle(ctx context.Context, actor *users.Actor, carID uuid.UUID) (ToggleResult, error)
	ListSaved(ctx context.Context, actor *users.Actor) ([]cars.CarDTO, error)
}

type service struct {
	repo     *Repository
	carRepo  *cars.Repository
	tx       TxRunner
	views    *cache.Views
	savedTTL time.Duration
	logg     *logger.Logger
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.CarRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	ttl := params.SavedTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		repo:     params.Repo,
		carRepo:  params.CarRepo,
		tx:       params.Tx,
		views:    params.Views,
		savedTTL: ttl,
		logg:     params.Logger,
	}, nil
}

// Toggle flips the saved state inside one transaction. The delete runs first;
// when it removed nothing the insert runs, and the unique (user, car) key
// turns a concurrent duplicate insert into a no-op that still reads as saved.
func (s *service) Toggle(ctx context.Context, actor *users.Actor, carID uuid.UUID) (ToggleResult, error) {
	if err := users.RequireActor(actor); err != nil {
		return ToggleResult{}, err
	}
	if carID == uuid.Nil {
		return ToggleResult{}, pkgerrors.New(pkgerrors.CodeValidation, "car id is required")
	}
	if _, err := s.carRepo.FindByID(ctx, carID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ToggleResult{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "car not found")
		}
		return ToggleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load car")
	}

	var saved bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		removed, err := repo.Remove(ctx, actor.UserID, carID)
		if err != nil {
			return err
		}
		if removed > 0 {
			saved = false
			return nil
		}
		saved = true
		return repo.Add(ctx, actor.UserID, carID)
	})
	if err != nil {
		return ToggleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle saved car")
	}

	s.views.InvalidateScope(ctx, cache.ViewSavedCars, actor.UserID.String())
	if s.logg != nil {
		logCtx := s.logg.WithCarID(s.logg.WithUserID(ctx, actor.UserID.String()), carID.String())
		s.logg.Info(s.logg.WithField(logCtx, "saved", saved), "wishlist.toggled")
	}
	return ToggleResult{Saved: saved}, nil
}

func (s *service) ListSaved(ctx context.Context, actor *users.Actor) ([]cars.CarDTO, error) {
	if err := users.RequireActor(actor); err != nil {
		return nil, err
	}
	return cache.Load(ctx, s.views, cache.ViewSavedCars, actor.UserID.String(), s.savedTTL, func(ctx context.Context) ([]cars.CarDTO, error) {
		rows, err := s.repo.ListCars(ctx, actor.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list saved cars")
		}
		out := make([]cars.CarDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, cars.FromModel(row, true))
		}
		return out, nil
	})
}
