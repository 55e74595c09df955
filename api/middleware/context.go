package middleware

import (
	"context"

	"github.com/dmoura/orderdraft-backend/pkg/types"
)

type contextKey string

const ctxScope contextKey = "request_scope"

// ScopeFromContext returns the request scope seeded by the auth middleware.
// The zero scope is returned for unauthenticated contexts; callers decide
// whether that is acceptable.
func ScopeFromContext(ctx context.Context) types.RequestScope {
	if ctx == nil {
		return types.RequestScope{}
	}
	if scope, ok := ctx.Value(ctxScope).(types.RequestScope); ok {
		return scope
	}
	return types.RequestScope{}
}

// WithScope injects the request scope into the context.
func WithScope(ctx context.Context, scope types.RequestScope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxScope, scope)
}
