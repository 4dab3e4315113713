package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/alzy/commerce-api/types"
)

// TokenVerifier is satisfied by *Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (types.Identity, error)
}

// Resolver turns an Authorization header into the current identity. It
// verifies on every call and keeps no cache.
type Resolver struct {
	verifier TokenVerifier
}

func NewResolver(verifier TokenVerifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve extracts the bearer token from header and verifies it.
func (r *Resolver) Resolve(ctx context.Context, header string) (types.Identity, error) {
	token, err := BearerToken(header)
	if err != nil {
		return types.Identity{}, err
	}
	return r.verifier.Verify(ctx, token)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization", ErrInvalidToken)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("%w: invalid authorization", ErrInvalidToken)
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("%w: invalid authorization", ErrInvalidToken)
	}
	return token, nil
}
