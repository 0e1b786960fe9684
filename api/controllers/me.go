package controllers

import (
	"net/http"

	"github.com/autoyard/autoyard-backend/api/middleware"
	"github.com/autoyard/autoyard-backend/api/responses"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

type meResponse struct {
	UserID     string `json:"userId"`
	ExternalID string `json:"externalId"`
	Role       string `json:"role"`
	IsAdmin    bool   `json:"isAdmin"`
}

// Me reports who the caller resolved to; the header uses it to show the admin link.
func Me(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if err := users.RequireActor(actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, meResponse{
			UserID:     actor.UserID.String(),
			ExternalID: actor.ExternalID,
			Role:       actor.Role.String(),
			IsAdmin:    actor.IsAdmin(),
		})
	}
}
