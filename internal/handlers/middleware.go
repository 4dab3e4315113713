package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/alzy/commerce-api/internal/auth"
	"github.com/alzy/commerce-api/internal/logging"
	"github.com/alzy/commerce-api/types"
)

// IdentityResolver is satisfied by *auth.Resolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (types.Identity, error)
}

// RequireAuth resolves the bearer token on every request and stores the
// identity in the request context. Token problems yield 401; store failures
// yield 500.
func RequireAuth(resolver IdentityResolver, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					logger.Debug(r.Context(), "token rejected", "error", err)
					writeUnauthorized(w)
					return
				}
				writeServiceError(w, r, logger, err, "user")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

func identityFromRequest(w http.ResponseWriter, r *http.Request) (types.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
	}
	return identity, ok
}
