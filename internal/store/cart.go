package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alzy/commerce-api/types"
)

// CartRepository handles persistence for cart lines.
type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// ListByUser returns the user's cart lines with their total price.
func (r *CartRepository) ListByUser(ctx context.Context, userID int) ([]types.CartItem, error) {
	const query = `
		SELECT c.id, c.user_id, c.product_id, c.quantity, p.price * c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.CartItem, 0)
	for rows.Next() {
		var item types.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a line. An existing (user, product) pair yields ErrConflict;
// an unknown product yields ErrNotFound.
func (r *CartRepository) Create(ctx context.Context, item types.CartItem) (types.CartItem, error) {
	const query = `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, (SELECT price FROM products WHERE id = $2) * quantity`
	if err := r.db.QueryRowContext(ctx, query, item.UserID, item.ProductID, item.Quantity).
		Scan(&item.ID, &item.TotalPrice); err != nil {
		return types.CartItem{}, translateError(err)
	}
	return item, nil
}

// UpdateQuantity sets the quantity of the user's line for productID.
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, productID, quantity int) (types.CartItem, error) {
	const query = `
		UPDATE cart_items c
		SET quantity = $1
		FROM products p
		WHERE c.user_id = $2 AND c.product_id = $3 AND p.id = c.product_id
		RETURNING c.id, p.price * c.quantity`
	item := types.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := r.db.QueryRowContext(ctx, query, quantity, userID, productID).
		Scan(&item.ID, &item.TotalPrice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.CartItem{}, ErrNotFound
		}
		return types.CartItem{}, err
	}
	return item, nil
}

func (r *CartRepository) Delete(ctx context.Context, userID, productID int) error {
	const query = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`
	return execAffectingOne(ctx, r.db, query, userID, productID)
}
