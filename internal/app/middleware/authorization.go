package middleware

import (
	"context"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Guarded messages name the resource and action they require.
// Messages that do not implement it are open to any caller.
type Guarded interface {
	Permission() (resource, action string)
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return CommandCheck(guardedOnly(a))
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return QueryCheck(guardedOnly(a))
}

func guardedOnly(a Authorizer) Check {
	return func(ctx context.Context, message any) error {
		if _, ok := message.(Guarded); !ok {
			return nil
		}
		return a.Authorize(ctx, message)
	}
}
