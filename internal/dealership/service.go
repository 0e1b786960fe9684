package dealership

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/enums"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// TxRunner runs fn in a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo   *Repository
	Tx     TxRunner
	Logger *logger.Logger
}

// Service manages the single dealership record.
type Service interface {
	// Get is the authenticated settings read.
	Get(ctx context.Context, actor *users.Actor) (DealershipDTO, error)
	// Info is the unauthenticated read used by car detail pages.
	Info(ctx context.Context) (DealershipDTO, error)
	SaveWorkingHours(ctx context.Context, actor *users.Actor, hours []WorkingHourInput) (DealershipDTO, error)
}

type service struct {
	repo *Repository
	tx   TxRunner
	logg *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealership repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx, logg: params.Logger}, nil
}

func (s *service) Get(ctx context.Context, actor *users.Actor) (DealershipDTO, error) {
	if err := users.RequireActor(actor); err != nil {
		return DealershipDTO{}, err
	}
	return s.Info(ctx)
}

func (s *service) Info(ctx context.Context) (DealershipDTO, error) {
	info, err := s.loadOrSeed(ctx, s.repo, true)
	if err != nil {
		return DealershipDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealership")
	}
	return fromModel(*info), nil
}

func (s *service) SaveWorkingHours(ctx context.Context, actor *users.Actor, hours []WorkingHourInput) (DealershipDTO, error) {
	if err := users.RequireAdmin(actor); err != nil {
		return DealershipDTO{}, err
	}
	rows, err := validateHours(hours)
	if err != nil {
		return DealershipDTO{}, err
	}

	var saved *models.DealershipInfo
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		info, err := s.loadOrSeed(ctx, repo, false)
		if err != nil {
			return err
		}
		if err := repo.ReplaceHours(ctx, info.ID, rows); err != nil {
			return err
		}
		saved, err = repo.First(ctx)
		return err
	})
	if err != nil {
		return DealershipDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save working hours")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "days", len(rows)), "dealership.hours_saved")
	}
	return fromModel(*saved), nil
}

// loadOrSeed returns the dealership, creating it when absent. withDefaultHours
// controls whether a freshly created record gets the default week.
func (s *service) loadOrSeed(ctx context.Context, repo *Repository, withDefaultHours bool) (*models.DealershipInfo, error) {
	info, err := repo.First(ctx)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seed := defaultDealership()
	if withDefaultHours {
		seed.WorkingHours = defaultHours()
	}
	if err := repo.Create(ctx, seed); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "dealership_id", seed.ID.String()), "dealership.seeded")
	}
	return seed, nil
}

func validateHours(hours []WorkingHourInput) ([]models.WorkingHour, error) {
	seen := map[enums.DayOfWeek]bool{}
	out := make([]models.WorkingHour, 0, len(hours))
	for _, h := range hours {
		day, err := enums.ParseDayOfWeek(h.DayOfWeek)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
		if seen[day] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate day %s", day))
		}
		seen[day] = true
		if !clockRe.MatchString(h.OpenTime) || !clockRe.MatchString(h.CloseTime) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s: times must be HH:MM", day)).
				WithDetails(map[string]any{"day": day.String(), "openTime": h.OpenTime, "closeTime": h.CloseTime})
		}
		// HH:MM compares correctly as a string.
		if h.IsOpen && h.CloseTime <= h.OpenTime {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s: closing time must be after opening time", day))
		}
		out = append(out, models.WorkingHour{
			DayOfWeek: day,
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			IsOpen:    h.IsOpen,
		})
	}
	return out, nil
}

func defaultDealership() *models.DealershipInfo {
	return &models.DealershipInfo{
		Name:    "AutoYard Motors",
		Address: "69 Car Street, Autoville, CA 69420",
		Phone:   "+1 (555) 123-4567",
		Email:   "contact@autoyard.example",
	}
}

func defaultHours() []models.WorkingHour {
	hours := make([]models.WorkingHour, 0, len(enums.Weekdays))
	for _, day := range enums.Weekdays {
		hours = append(hours, models.WorkingHour{
			DayOfWeek: day,
			OpenTime:  "08:00",
			CloseTime: "17:00",
			IsOpen:    day != enums.DaySunday,
		})
	}
	return hours
}
