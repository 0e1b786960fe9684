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

// CarsSearch serves the filtered, sorted and paginated catalog.
func CarsSearch(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cars service unavailable"))
			return
		}

		criteria := cars.ParseSearchCriteria(r.URL.Query())
		result, err := svc.Search(ctx, middleware.ActorFromContext(ctx), criteria)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CarsFilters returns the facet values for the filter sidebar.
func CarsFilters(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cars service unavailable"))
			return
		}

		facets, err := svc.Facets(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, facets)
	}
}

func CarsFeatured(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cars service unavailable"))
			return
		}

		featured, err := svc.Featured(ctx, middleware.ActorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, featured)
	}
}

// CarDetail returns one car with the dealership block, regardless of status.
func CarDetail(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
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

		detail, err := svc.GetCar(ctx, middleware.ActorFromContext(ctx), carID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// CarsImageSearch turns an uploaded photo into suggested search filters.
func CarsImageSearch(svc listings.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.SearchByImage(ctx, upload.Data, upload.MIMEType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
