package controllers

import (
	"net/http"

	"github.com/autoyard/autoyard-backend/api/middleware"
	"github.com/autoyard/autoyard-backend/api/responses"
	"github.com/autoyard/autoyard-backend/api/validators"
	"github.com/autoyard/autoyard-backend/internal/dealership"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

type workingHoursPayload struct {
	WorkingHours []dealership.WorkingHourInput `json:"workingHours" validate:"required,dive"`
}

func DealershipGet(svc dealership.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealership service unavailable"))
			return
		}

		info, err := svc.Get(ctx, middleware.ActorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

// DealershipSaveHours replaces the whole weekly schedule.
func DealershipSaveHours(svc dealership.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealership service unavailable"))
			return
		}

		var payload workingHoursPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		info, err := svc.SaveWorkingHours(ctx, middleware.ActorFromContext(ctx), payload.WorkingHours)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}
