package types

// CartItem is a single product line in a user's cart. A user holds at most
// one line per product.
type CartItem struct {
	// ID is the unique identifier of the cart line.
	ID int `json:"id" db:"id"`

	// UserID identifies the owner of the cart.
	UserID int `json:"user_id" db:"user_id"`

	// ProductID identifies the product in this line.
	ProductID int `json:"product_id" db:"product_id"`

	// Quantity is the number of units, at least one.
	Quantity int `json:"quantity" db:"quantity"`

	// TotalPrice is the product price multiplied by Quantity. It is
	// computed when the line is read and is not stored.
	TotalPrice float64 `json:"total_price" db:"-"`
}
