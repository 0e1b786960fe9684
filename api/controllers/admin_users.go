package controllers

import (
	"net/http"

	"github.com/autoyard/autoyard-backend/api/middleware"
	"github.com/autoyard/autoyard-backend/api/responses"
	"github.com/autoyard/autoyard-backend/api/validators"
	"github.com/autoyard/autoyard-backend/internal/users"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

type updateRolePayload struct {
	Role string `json:"role" validate:"required,oneof=ADMIN USER"`
}

func AdminUsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		list, err := svc.ListUsers(ctx, middleware.ActorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminUsersUpdateRole promotes or demotes a user by external id.
func AdminUsersUpdateRole(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		externalID, err := validators.PathParam(r, "externalId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateRolePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.UpdateRole(ctx, middleware.ActorFromContext(ctx), externalID, payload.Role)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
