package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/alzy/commerce-api/internal/store"
	"github.com/alzy/commerce-api/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]types.User
	err     error
	calls   int
}

func newMemUsers(users ...types.User) *memUsers {
	m := &memUsers{byEmail: map[string]types.User{}}
	for _, u := range users {
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return types.User{}, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByPhone(_ context.Context, phone string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return types.User{}, m.err
	}
	for _, u := range m.byEmail {
		if u.Phone == phone {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) delete(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byEmail, email)
}

func testHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost)
}

func testUser(t *testing.T, h *PasswordHasher) types.User {
	t.Helper()
	hash, err := h.Hash("Test1234!")
	require.NoError(t, err)
	return types.User{
		ID:           1,
		FullName:     "test",
		Email:        "test@example.com",
		Phone:        "+79500664444",
		PasswordHash: hash,
	}
}

func testTokenConfig(t *testing.T, secret string) TokenConfig {
	t.Helper()
	cfg, err := NewTokenConfig(secret, "HS256", DefaultTokenTTL)
	require.NoError(t, err)
	return cfg
}
