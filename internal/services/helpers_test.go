package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/alzy/commerce-api/internal/store"
	"github.com/alzy/commerce-api/types"
)

type memUserRepo struct {
	mu        sync.Mutex
	users     []types.User
	createErr error
}

func (m *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	return m.find(func(u types.User) bool { return u.ID == id })
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.Email == email })
}

func (m *memUserRepo) GetByPhone(_ context.Context, phone string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.Phone == phone })
}

func (m *memUserRepo) find(match func(types.User) bool) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return types.User{}, m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Phone == user.Phone {
			return types.User{}, errors.Join(store.ErrConflict, &store.ConstraintError{Constraint: "users_phone_key"})
		}
	}
	user.ID = len(m.users) + 1
	m.users = append(m.users, user)
	return user, nil
}

type prefixHasher struct{}

func (prefixHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

type memProductRepo struct {
	products map[int]types.Product
	nextID   int
}

func newMemProductRepo(products ...types.Product) *memProductRepo {
	repo := &memProductRepo{products: map[int]types.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
		repo.nextID = max(repo.nextID, p.ID)
	}
	return repo
}

func (m *memProductRepo) List(_ context.Context, offset, limit int) ([]types.Product, int, error) {
	items := make([]types.Product, 0)
	for id := 1; id <= m.nextID; id++ {
		if p, ok := m.products[id]; ok && p.IsActive {
			items = append(items, p)
		}
	}
	total := len(items)
	if offset >= total {
		return []types.Product{}, total, nil
	}
	return items[offset:min(offset+limit, total)], total, nil
}

func (m *memProductRepo) Get(_ context.Context, id int) (types.Product, error) {
	p, ok := m.products[id]
	if !ok || !p.IsActive {
		return types.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (m *memProductRepo) Create(_ context.Context, p types.Product) (types.Product, error) {
	m.nextID++
	p.ID = m.nextID
	p.IsActive = true
	m.products[p.ID] = p
	return p, nil
}

func (m *memProductRepo) Update(_ context.Context, p types.Product) (types.Product, error) {
	current, ok := m.products[p.ID]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	current.Name, current.Description, current.Price = p.Name, p.Description, p.Price
	m.products[p.ID] = current
	return current, nil
}

func (m *memProductRepo) SetImageKey(_ context.Context, id int, key string) error {
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.ImageKey = key
	m.products[id] = p
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

type memImages struct {
	objects   map[string][]byte
	putErr    error
	deleteErr error
}

func newMemImages() *memImages { return &memImages{objects: map[string][]byte{}} }

func (m *memImages) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return err
	}
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *memImages) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	return nil
}

type memCartRepo struct {
	items  []types.CartItem
	prices map[int]float64
}

func (m *memCartRepo) ListByUser(_ context.Context, userID int) ([]types.CartItem, error) {
	out := make([]types.CartItem, 0)
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memCartRepo) Create(_ context.Context, item types.CartItem) (types.CartItem, error) {
	for _, it := range m.items {
		if it.UserID == item.UserID && it.ProductID == item.ProductID {
			return types.CartItem{}, errors.Join(store.ErrConflict, &store.ConstraintError{Constraint: "cart_items_user_id_product_id_key"})
		}
	}
	item.ID = len(m.items) + 1
	item.TotalPrice = m.prices[item.ProductID] * float64(item.Quantity)
	m.items = append(m.items, item)
	return item, nil
}

func (m *memCartRepo) UpdateQuantity(_ context.Context, userID, productID, quantity int) (types.CartItem, error) {
	for i, it := range m.items {
		if it.UserID == userID && it.ProductID == productID {
			m.items[i].Quantity = quantity
			m.items[i].TotalPrice = m.prices[productID] * float64(quantity)
			return m.items[i], nil
		}
	}
	return types.CartItem{}, store.ErrNotFound
}

func (m *memCartRepo) Delete(_ context.Context, userID, productID int) error {
	for i, it := range m.items {
		if it.UserID == userID && it.ProductID == productID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type published struct {
	channel string
	data    []byte
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.messages = append(p.messages, published{channel: channel, data: data})
	return "msg-1", nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func validRegistration() RegisterInput {
	return RegisterInput{
		FullName:        "Test User",
		Email:           "test@example.com",
		Phone:           "+79500664444",
		Password:        "Test1234!",
		ConfirmPassword: "Test1234!",
	}
}
