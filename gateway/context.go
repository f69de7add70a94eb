package gateway

import (
	"context"

	"github.com/cloudgrid/api-gateway/models"
)

// Context key type to avoid collisions
type contextKey string

// callContextKey is the context key for the per-request call context
const callContextKey contextKey = "call_context"

// CallContext identifies on whose behalf the current request runs. Login
// and logout execute under the system identity; authenticated commands run
// under the caller's.
type CallContext struct {
	User    *models.User
	Account *models.Account
}

// WithCallContext attaches a call context to ctx.
func WithCallContext(ctx context.Context, cc *CallContext) context.Context {
	return context.WithValue(ctx, callContextKey, cc)
}

// CallContextFrom retrieves the call context, or nil when none was
// registered.
func CallContextFrom(ctx context.Context) *CallContext {
	if val := ctx.Value(callContextKey); val != nil {
		if cc, ok := val.(*CallContext); ok {
			return cc
		}
	}
	return nil
}
