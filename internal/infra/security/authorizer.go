package security

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/middleware"
	domainuser "hotelbooking/internal/domain/user"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Policies grants guests their own booking actions; admins inherit them.
var Policies = [][]string{
	{string(domainuser.RoleUser), "booking", "create"},
	{string(domainuser.RoleUser), "booking", "update"},
	{string(domainuser.RoleUser), "booking", "cancel"},
	{string(domainuser.RoleUser), "booking", "read"},
	{string(domainuser.RoleUser), "rating", "create"},
	{string(domainuser.RoleAdmin), "booking", "admin_update"},
	{string(domainuser.RoleAdmin), "booking", "confirm"},
	{string(domainuser.RoleAdmin), "room", "create"},
	{string(domainuser.RoleAdmin), "room", "reconcile"},
	{string(domainuser.RoleAdmin), "ledger", "read"},
}

// Authorizer enforces role × resource × action with casbin. Messages that do
// not implement middleware.Guarded pass; ownership checks stay in handlers.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

func NewAuthorizer() (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("security: load model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("security: create enforcer: %w", err)
	}
	if _, err := e.AddPolicies(Policies); err != nil {
		return nil, fmt.Errorf("security: load policies: %w", err)
	}
	if _, err := e.AddGroupingPolicy(string(domainuser.RoleAdmin), string(domainuser.RoleUser)); err != nil {
		return nil, fmt.Errorf("security: load roles: %w", err)
	}
	return &Authorizer{enforcer: e}, nil
}

func (a *Authorizer) Authorize(ctx context.Context, message any) error {
	guarded, ok := message.(middleware.Guarded)
	if !ok {
		return nil
	}
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return err
	}
	resource, action := guarded.Permission()
	allowed, err := a.enforcer.Enforce(string(actor.Role), resource, action)
	if err != nil {
		return fmt.Errorf("security: enforce: %w", err)
	}
	if !allowed {
		return auth.ErrForbidden
	}
	return nil
}

var _ middleware.Authorizer = (*Authorizer)(nil)
