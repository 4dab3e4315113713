package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/alzy/commerce-api/internal/store"
	"github.com/alzy/commerce-api/types"
)

// IdentityStore looks up users by their login identifiers.
type IdentityStore interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByPhone(ctx context.Context, phone string) (types.User, error)
}

// Authenticator checks login credentials against stored users.
type Authenticator struct {
	users  IdentityStore
	hasher *PasswordHasher

	// dummyHash is compared on lookup misses so that unknown identifiers
	// take as long as wrong passwords.
	dummyHash string
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(users IdentityStore, hasher *PasswordHasher) (*Authenticator, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Authenticator{
		users:     users,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

// Authenticate resolves identifier to a user and checks password against
// the stored hash. Unknown users and wrong passwords both yield
// ErrInvalidCredentials. The returned user still carries its password hash
// and must not leave the login path.
func (a *Authenticator) Authenticate(ctx context.Context, identifier, password string) (types.User, error) {
	id := ParseIdentifier(identifier)
	if id.Value == "" {
		return types.User{}, ErrInvalidCredentials
	}

	user, err := a.lookup(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return types.User{}, fmt.Errorf("lookup user by %s: %w", id.Kind, err)
		}
		if ctx.Err() == nil {
			a.hasher.Verify(password, a.dummyHash)
		}
		return types.User{}, ErrInvalidCredentials
	}

	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	if !a.hasher.Verify(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (a *Authenticator) lookup(ctx context.Context, id Identifier) (types.User, error) {
	if id.Kind == IdentifierEmail {
		return a.users.GetByEmail(ctx, id.Value)
	}
	return a.users.GetByPhone(ctx, id.Value)
}
