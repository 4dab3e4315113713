package services

import (
	"context"
	"errors"

	"github.com/alzy/commerce-api/internal/store"
	"github.com/alzy/commerce-api/types"
)

// CartRepository defines persistence operations for cart lines.
type CartRepository interface {
	ListByUser(ctx context.Context, userID int) ([]types.CartItem, error)
	Create(ctx context.Context, item types.CartItem) (types.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID, quantity int) (types.CartItem, error)
	Delete(ctx context.Context, userID, productID int) error
}

// ProductLookup resolves active products.
type ProductLookup interface {
	Get(ctx context.Context, id int) (types.Product, error)
}

// ErrCartItemExists is returned when the product is already in the cart.
var ErrCartItemExists = errors.New("product already in cart")

// CartAddInput is the payload for adding a product to the cart.
type CartAddInput struct {
	ProductID int `json:"product_id" validate:"gt=0"`
	Quantity  int `json:"quantity" validate:"gte=1"`
}

// CartUpdateInput is the payload for changing a line's quantity.
type CartUpdateInput struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

// CartService encapsulates cart use-cases. Every operation is scoped to the
// calling user.
type CartService struct {
	repo     CartRepository
	products ProductLookup
	events   *Events
}

func NewCartService(repo CartRepository, products ProductLookup, events *Events) *CartService {
	return &CartService{repo: repo, products: products, events: events}
}

func (s *CartService) List(ctx context.Context, userID int) ([]types.CartItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add creates a new line for an active product. A second line for the same
// product yields ErrCartItemExists.
func (s *CartService) Add(ctx context.Context, userID int, in CartAddInput) (types.CartItem, error) {
	if err := validateStruct(in); err != nil {
		return types.CartItem{}, err
	}
	if _, err := s.products.Get(ctx, in.ProductID); err != nil {
		return types.CartItem{}, err
	}

	item, err := s.repo.Create(ctx, types.CartItem{
		UserID:    userID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.CartItem{}, errors.Join(ErrCartItemExists, err)
		}
		return types.CartItem{}, err
	}

	s.events.cartItemAdded(ctx, CartItemAdded{UserID: userID, ProductID: item.ProductID, Quantity: item.Quantity})
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID int, in CartUpdateInput) (types.CartItem, error) {
	if err := validateStruct(in); err != nil {
		return types.CartItem{}, err
	}
	return s.repo.UpdateQuantity(ctx, userID, productID, in.Quantity)
}

func (s *CartService) Remove(ctx context.Context, userID, productID int) error {
	return s.repo.Delete(ctx, userID, productID)
}
