package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alzy/commerce-api/internal/auth"
	"github.com/alzy/commerce-api/internal/logging"
	"github.com/alzy/commerce-api/internal/services"
	"github.com/alzy/commerce-api/internal/store"
	"github.com/alzy/commerce-api/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-test-secret"

type memUsers struct {
	mu    sync.Mutex
	users []types.User
	err   error
}

func (m *memUsers) find(match func(types.User) bool) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.User{}, m.err
	}
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int) (types.User, error) {
	return m.find(func(u types.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.Email == email })
}

func (m *memUsers) GetByPhone(_ context.Context, phone string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.Phone == phone })
}

func (m *memUsers) Create(_ context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Phone == user.Phone {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = len(m.users) + 1
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users = append(m.users, user)
	return user, nil
}

func (m *memUsers) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type memProducts struct {
	mu       sync.Mutex
	products map[int]types.Product
	nextID   int
}

func (m *memProducts) List(_ context.Context, offset, limit int) ([]types.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]types.Product, 0)
	for id := 1; id <= m.nextID; id++ {
		if p, ok := m.products[id]; ok {
			items = append(items, p)
		}
	}
	total := len(items)
	if offset >= total {
		return []types.Product{}, total, nil
	}
	return items[offset:min(offset+limit, total)], total, nil
}

func (m *memProducts) Get(_ context.Context, id int) (types.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) Create(_ context.Context, p types.Product) (types.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	p.IsActive = true
	m.products[p.ID] = p
	return p, nil
}

func (m *memProducts) Update(_ context.Context, p types.Product) (types.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return types.Product{}, store.ErrNotFound
	}
	p.IsActive = true
	m.products[p.ID] = p
	return p, nil
}

func (m *memProducts) SetImageKey(_ context.Context, id int, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.ImageKey = key
	m.products[id] = p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

type memCart struct {
	mu       sync.Mutex
	items    []types.CartItem
	products *memProducts
}

func (m *memCart) ListByUser(_ context.Context, userID int) ([]types.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.CartItem, 0)
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, m.priced(it))
		}
	}
	return out, nil
}

func (m *memCart) Create(_ context.Context, item types.CartItem) (types.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.UserID == item.UserID && it.ProductID == item.ProductID {
			return types.CartItem{}, store.ErrConflict
		}
	}
	item.ID = len(m.items) + 1
	m.items = append(m.items, item)
	return m.priced(item), nil
}

func (m *memCart) UpdateQuantity(_ context.Context, userID, productID, quantity int) (types.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.UserID == userID && it.ProductID == productID {
			m.items[i].Quantity = quantity
			return m.priced(m.items[i]), nil
		}
	}
	return types.CartItem{}, store.ErrNotFound
}

func (m *memCart) Delete(_ context.Context, userID, productID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.UserID == userID && it.ProductID == productID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memCart) priced(it types.CartItem) types.CartItem {
	it.TotalPrice = m.products.products[it.ProductID].Price * float64(it.Quantity)
	return it
}

type testApp struct {
	router http.Handler
	users  *memUsers
}

func newTestApp(t *testing.T, loginLimiter func(http.Handler) http.Handler) *testApp {
	t.Helper()

	logger := logging.Discard()
	users := &memUsers{}
	products := &memProducts{products: map[int]types.Product{}}
	cart := &memCart{products: products}

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokenCfg, err := auth.NewTokenConfig(testSecret, "HS256", time.Hour)
	require.NoError(t, err)
	authenticator, err := auth.NewAuthenticator(users, hasher)
	require.NoError(t, err)
	login := auth.NewService(authenticator, auth.NewIssuer(tokenCfg))
	resolver := auth.NewResolver(auth.NewVerifier(tokenCfg, users))
	requireAuth := RequireAuth(resolver, logger)

	userService := services.NewUserService(users, hasher, nil)
	productService := services.NewProductService(products, nil, logger)
	cartService := services.NewCartService(cart, products, nil)

	r := chi.NewRouter()
	r.Get("/healthz", Healthz)
	r.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, login, requireAuth, loginLimiter, logger)
	})
	r.Route("/products", func(r chi.Router) {
		ProductRouter(r, productService, requireAuth, logger)
	})
	r.Route("/cart", func(r chi.Router) {
		CartRouter(r, cartService, requireAuth, logger)
	})

	return &testApp{router: r, users: users}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func registration() map[string]string {
	return map[string]string{
		"full_name":        "Test User",
		"email":            "test@example.com",
		"phone":            "+79500664444",
		"password":         "Test1234!",
		"confirm_password": "Test1234!",
	}
}

// registerAndLogin registers the default user and returns an access token.
func (a *testApp) registerAndLogin(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/users/register", "", registration())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email_or_phone": "test@example.com",
		"password":       "Test1234!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token auth.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	return token.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

var errStoreDown = errors.New("connection refused")
