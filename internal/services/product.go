package services

import (
	"context"
	"math"
	"strings"

	"github.com/alzy/commerce-api/internal/logging"
	"github.com/alzy/commerce-api/types"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Product, int, error)
	Get(ctx context.Context, id int) (types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	SetImageKey(ctx context.Context, id int, key string) error
	Delete(ctx context.Context, id int) error
}

// ProductInput is the create/update payload.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Description string  `json:"description" validate:"max=255"`
	Price       float64 `json:"price" validate:"gt=0,lte=99999999.99"`
}

func (in ProductInput) normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Price = math.Round(in.Price*100) / 100
	return in
}

// ProductService encapsulates product use-cases.
type ProductService struct {
	repo   ProductRepository
	images ImageStore
	logger logging.Logger
}

// NewProductService builds the service. images may be nil, in which case
// image uploads fail with ErrStorageDisabled.
func NewProductService(repo ProductRepository, images ImageStore, logger logging.Logger) *ProductService {
	return &ProductService{repo: repo, images: images, logger: logger}
}

// List returns a page of active products and the total active count. The
// limit is clamped to [1, MaxPageLimit] with DefaultPageLimit for zero.
func (s *ProductService) List(ctx context.Context, offset, limit int) ([]types.Product, int, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *ProductService) Get(ctx context.Context, id int) (types.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (types.Product, error) {
	in = in.normalize()
	if err := validateStruct(in); err != nil {
		return types.Product{}, err
	}
	return s.repo.Create(ctx, types.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	})
}

func (s *ProductService) Update(ctx context.Context, id int, in ProductInput) (types.Product, error) {
	in = in.normalize()
	if err := validateStruct(in); err != nil {
		return types.Product{}, err
	}
	return s.repo.Update(ctx, types.Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	})
}

// Delete removes the product and, when it had one, its stored image.
func (s *ProductService) Delete(ctx context.Context, id int) error {
	var imageKey string
	if s.images != nil {
		if product, err := s.repo.Get(ctx, id); err == nil {
			imageKey = product.ImageKey
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if imageKey != "" {
		s.dropImage(ctx, id, imageKey)
	}
	return nil
}

// dropImage removes an object that is no longer referenced. A failure
// leaves an orphan in the bucket and is only logged.
func (s *ProductService) dropImage(ctx context.Context, productID int, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "delete product image", "product_id", productID, "key", key, "error", err)
	}
}
