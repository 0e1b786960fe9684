package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autoyard/autoyard-backend/api/controllers"
	"github.com/autoyard/autoyard-backend/api/middleware"
	"github.com/autoyard/autoyard-backend/internal/cars"
	"github.com/autoyard/autoyard-backend/internal/dealership"
	"github.com/autoyard/autoyard-backend/internal/listings"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/internal/wishlist"
	"github.com/autoyard/autoyard-backend/pkg/config"
	"github.com/autoyard/autoyard-backend/pkg/logger"
	pkgredis "github.com/autoyard/autoyard-backend/pkg/redis"
)

// Services groups the domain services behind the HTTP surface.
type Services struct {
	Users      users.Service
	Cars       cars.Service
	Wishlist   wishlist.Service
	Dealership dealership.Service
	Listings   listings.Service
}

// Infra groups the clients the router touches directly.
type Infra struct {
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Storage  controllers.Pinger
	Limiter  middleware.WindowLimiter
	Replays  pkgredis.IdempotencyStore
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	extractPolicy := middleware.RateLimitPolicy{
		Name:   "ai_extract",
		Window: cfg.RateLimit.AIExtractWindow,
		Limit:  int64(cfg.RateLimit.AIExtractLimit),
	}
	imageSearchPolicy := middleware.RateLimitPolicy{
		Name:   "image_search",
		Window: cfg.RateLimit.AIExtractWindow,
		Limit:  int64(cfg.RateLimit.ImageSearchLimit),
	}

	requireAuth := middleware.Auth(cfg.Auth, svc.Users, logg)
	optionalAuth := middleware.OptionalAuth(cfg.Auth, svc.Users, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": infra.DB,
			"redis":    infra.Redis,
			"storage":  infra.Storage,
		}))
	})

	if infra.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cars", func(r chi.Router) {
			r.Get("/filters", controllers.CarsFilters(svc.Cars, logg))
			r.With(middleware.RateLimit(infra.Limiter, imageSearchPolicy, logg)).
				Post("/image-search", controllers.CarsImageSearch(svc.Listings, cfg.App.MaxUploadBytes, logg))

			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/", controllers.CarsSearch(svc.Cars, logg))
				r.Get("/featured", controllers.CarsFeatured(svc.Cars, logg))
				r.Get("/{carId}", controllers.CarDetail(svc.Cars, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", controllers.Me(logg))
			r.Get("/saved-cars", controllers.SavedCarsList(svc.Wishlist, logg))
			r.Post("/saved-cars/{carId}/toggle", controllers.SavedCarsToggle(svc.Wishlist, logg))
			r.Get("/dealership", controllers.DealershipGet(svc.Dealership, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", controllers.AdminCarsList(svc.Cars, logg))
			r.With(middleware.BodyLimit(cfg.App.MaxJSONBodyBytes), middleware.Idempotency(infra.Replays, logg)).
				Post("/", controllers.AdminCarsCreate(svc.Listings, logg))
			r.With(middleware.RateLimit(infra.Limiter, extractPolicy, logg)).
				Post("/extract", controllers.AdminCarsExtract(svc.Listings, cfg.App.MaxUploadBytes, logg))
			r.Patch("/{carId}", controllers.AdminCarsUpdate(svc.Cars, logg))
			r.Delete("/{carId}", controllers.AdminCarsDelete(svc.Cars, logg))
		})

		r.Put("/dealership/working-hours", controllers.DealershipSaveHours(svc.Dealership, logg))

		r.Get("/users", controllers.AdminUsersList(svc.Users, logg))
		r.Patch("/users/{externalId}/role", controllers.AdminUsersUpdateRole(svc.Users, logg))
	})

	return r
}
