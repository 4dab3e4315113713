package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alzy/commerce-api/types"
)

const productColumns = `id, name, description, price, is_active, COALESCE(image_key, ''), created_at, updated_at`

// ProductRepository handles persistence for products.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns a page of active products and the number of active products.
func (r *ProductRepository) List(ctx context.Context, offset, limit int) ([]types.Product, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}

	const countQuery = `SELECT COUNT(1) FROM products WHERE is_active`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]types.Product, 0, limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Get returns an active product.
func (r *ProductRepository) Get(ctx context.Context, id int) (types.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product types.Product) (types.Product, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsActive = true

	const query = `
		INSERT INTO products (name, description, price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID); err != nil {
		return types.Product{}, err
	}
	return product, nil
}

// Update overwrites name, description and price and returns the stored row.
func (r *ProductRepository) Update(ctx context.Context, product types.Product) (types.Product, error) {
	const query = `
		UPDATE products
		SET name = $1,
			description = $2,
			price = $3,
			updated_at = $4
		WHERE id = $5
		RETURNING ` + productColumns
	updated, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		time.Now(),
		product.ID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}
	return updated, nil
}

func (r *ProductRepository) SetImageKey(ctx context.Context, id int, key string) error {
	const query = `UPDATE products SET image_key = $1, updated_at = $2 WHERE id = $3`
	return execAffectingOne(ctx, r.db, query, key, time.Now(), id)
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM products WHERE id = $1`
	return execAffectingOne(ctx, r.db, query, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (types.Product, error) {
	var product types.Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.IsActive,
		&product.ImageKey,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

func execAffectingOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
