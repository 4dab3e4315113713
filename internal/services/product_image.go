package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/alzy/commerce-api/internal/storage"
	"github.com/alzy/commerce-api/types"
)

// MaxImageBytes bounds an uploaded product image.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore is the subset of object storage used for product images.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// ProductImage is a validated upload ready to be stored.
type ProductImage struct {
	Key         string
	ContentType string
	SHA256      string
	Data        []byte
}

// InspectImage sniffs the content type of data and rejects anything that is
// empty, oversized or not a supported image format.
func InspectImage(productID int, data []byte) (ProductImage, error) {
	if len(data) == 0 {
		return ProductImage{}, invalid("image", "is required")
	}
	if len(data) > MaxImageBytes {
		return ProductImage{}, invalid("image", fmt.Sprintf("must be at most %d bytes", MaxImageBytes))
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return ProductImage{}, invalid("image", "unsupported image format "+contentType)
	}

	sum := sha256.Sum256(data)
	return ProductImage{
		Key:         storage.ObjectKey(fmt.Sprintf("products/%d", productID), ext),
		ContentType: contentType,
		SHA256:      hex.EncodeToString(sum[:]),
		Data:        data,
	}, nil
}

// SetImage stores data as the product's image and replaces the previous
// one. The old object is removed only after the new key is recorded.
func (s *ProductService) SetImage(ctx context.Context, productID int, data []byte) (types.Product, error) {
	if s.images == nil {
		return types.Product{}, ErrStorageDisabled
	}

	product, err := s.repo.Get(ctx, productID)
	if err != nil {
		return types.Product{}, err
	}

	image, err := InspectImage(productID, data)
	if err != nil {
		return types.Product{}, err
	}

	if err := s.images.Put(ctx, image.Key, bytes.NewReader(image.Data), int64(len(image.Data)), image.ContentType); err != nil {
		return types.Product{}, fmt.Errorf("store image: %w", err)
	}
	if err := s.repo.SetImageKey(ctx, productID, image.Key); err != nil {
		s.dropImage(ctx, productID, image.Key)
		return types.Product{}, err
	}
	s.logger.Info(ctx, "product image stored",
		"product_id", productID,
		"key", image.Key,
		"content_type", image.ContentType,
		"size", len(image.Data),
		"sha256", image.SHA256,
	)
	if product.ImageKey != "" {
		s.dropImage(ctx, productID, product.ImageKey)
	}

	product.ImageKey = image.Key
	return product, nil
}
