package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/autoyard/autoyard-backend/api/responses"
	"github.com/autoyard/autoyard-backend/internal/users"
	pkgAuth "github.com/autoyard/autoyard-backend/pkg/auth"
	"github.com/autoyard/autoyard-backend/pkg/config"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

// UserProvisioner resolves a verified identity to a local user, creating the
// row on first sight.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, ident users.ExternalIdentity) (*users.Actor, error)
}

// Auth requires a valid identity token and seeds the context with the actor.
func Auth(cfg config.AuthConfig, provisioner UserProvisioner, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, provisioner, logg, true)
}

// OptionalAuth resolves the actor when a token is sent and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func OptionalAuth(cfg config.AuthConfig, provisioner UserProvisioner, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, provisioner, logg, false)
}

func authenticate(cfg config.AuthConfig, provisioner UserProvisioner, logg *logger.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseIdentityToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if provisioner == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user provisioning unavailable"))
				return
			}

			actor, err := provisioner.EnsureUser(r.Context(), users.ExternalIdentity{
				ExternalID: claims.ExternalID(),
				Name:       claims.Name,
				Email:      claims.Email,
				ImageURL:   claims.ImageURL,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    actor.UserID.String(),
					"actor_role": actor.Role.String(),
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
