package auth

import (
	"context"

	"github.com/alzy/commerce-api/types"
)

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity types.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (types.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(types.Identity)
	if !ok || identity.ID < 1 {
		return types.Identity{}, false
	}
	return identity, true
}
