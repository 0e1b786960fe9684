package middleware

import (
	"context"

	"github.com/autoyard/autoyard-backend/internal/users"
)

type contextKey string

const ctxActor contextKey = "actor"

// WithActor injects the resolved caller into the context.
func WithActor(ctx context.Context, actor *users.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the caller, or nil for anonymous requests.
func ActorFromContext(ctx context.Context) *users.Actor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxActor).(*users.Actor); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if actor := ActorFromContext(ctx); actor != nil {
		return actor.UserID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if actor := ActorFromContext(ctx); actor != nil {
		return actor.Role.String()
	}
	return ""
}
