package types

import "time"

// Product represents an item offered in the catalogue.
type Product struct {
	// ID is the unique identifier of the product.
	ID int `json:"id" db:"id"`

	// Name is the human-readable name of the product.
	Name string `json:"name" db:"name"`

	// Description is a short free-form description of the product.
	Description string `json:"description" db:"description"`

	// Price is the unit price, stored with two decimal places.
	Price float64 `json:"price" db:"price"`

	// IsActive marks the product as visible to customers. Inactive
	// products are hidden from listings and lookups.
	IsActive bool `json:"is_active" db:"is_active"`

	// ImageKey is the object storage key of the product image, if any.
	ImageKey string `json:"image_key,omitempty" db:"image_key"`

	// CreatedAt is the timestamp at which the product was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the product.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
