package users

import (
	"github.com/google/uuid"

	"github.com/autoyard/autoyard-backend/pkg/enums"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
)

// Actor is the resolved caller of an operation.
type Actor struct {
	UserID     uuid.UUID
	ExternalID string
	Role       enums.UserRole
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == enums.UserRoleAdmin
}

// RequireActor fails with UNAUTHORIZED when no caller was resolved.
func RequireActor(actor *Actor) error {
	if actor == nil || actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	return nil
}

// RequireAdmin additionally fails with FORBIDDEN for non-admins.
func RequireAdmin(actor *Actor) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

// UserIDOf returns the actor's user id, or nil for anonymous callers.
func UserIDOf(actor *Actor) *uuid.UUID {
	if actor == nil || actor.UserID == uuid.Nil {
		return nil
	}
	id := actor.UserID
	return &id
}
