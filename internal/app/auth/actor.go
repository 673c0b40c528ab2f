package auth

import (
	"context"
	"errors"
	"strings"

	domainuser "hotelbooking/internal/domain/user"
)

var (
	ErrUnauthenticated = errors.New("auth: authentication required")
	ErrForbidden       = errors.New("auth: insufficient permissions")
)

// Actor is the caller identity asserted by the upstream gateway.
type Actor struct {
	UserID string
	Role   domainuser.Role
	Email  string
	Name   string
}

func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.UserID) != ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == domainuser.RoleAdmin
}

// CanAccess allows admins and the owner of a resource.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin() || (a.Authenticated() && a.UserID == ownerID)
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || !actor.Authenticated() {
		return Actor{}, false
	}
	return actor, true
}

// RequireActor returns ErrUnauthenticated when ctx has no caller.
func RequireActor(ctx context.Context) (Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, ErrUnauthenticated
	}
	return actor, nil
}
