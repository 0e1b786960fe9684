package middleware

import (
	"net/http"

	"github.com/autoyard/autoyard-backend/api/responses"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

// RequireAdmin must run after Auth.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := users.RequireAdmin(ActorFromContext(r.Context())); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
