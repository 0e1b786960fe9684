package controllers

import (
	"net/http"

	"github.com/autoyard/autoyard-backend/api/middleware"
	"github.com/autoyard/autoyard-backend/api/responses"
	"github.com/autoyard/autoyard-backend/api/validators"
	"github.com/autoyard/autoyard-backend/internal/cars"
	"github.com/autoyard/autoyard-backend/internal/listings"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

const adminSearchMaxLen = 100

// AdminCarsList returns the full inventory, optionally filtered by ?search=.
func AdminCarsList(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cars service unavailable"))
			return
		}

		search := validators.SanitizeString(r.URL.Query().Get("search"), adminSearchMaxLen)
		list, err := svc.ListAdmin(ctx, middleware.ActorFromContext(ctx), search)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminCarsExtract runs the vision model over an uploaded photo and returns
// the prefill for the create form. Nothing is persisted.
func AdminCarsExtract(svc listings.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		upload, err := validators.ReadImageUpload(w, r, "image", maxBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		extracted, err := svc.Extract(ctx, upload.Data, upload.MIMEType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, extracted)
	}
}

func AdminCarsCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		var req listings.CreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.Create(ctx, middleware.ActorFromContext(ctx), req.Car, req.Images)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminCarsUpdate applies a partial status/featured update.
func AdminCarsUpdate(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cars service unavailable"))
			return
		}

		carID, err := validators.PathUUID(r, "carId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var update cars.StatusUpdate
		if err := validators.DecodeJSONBody(r, &update); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.UpdateStatus(ctx, middleware.ActorFromContext(ctx), carID, update)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func AdminCarsDelete(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cars service unavailable"))
			return
		}

		carID, err := validators.PathUUID(r, "carId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithCarID(ctx, carID.String())
		}

		if err := svc.Delete(ctx, middleware.ActorFromContext(ctx), carID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
