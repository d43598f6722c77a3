package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/product"
)

type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type productRow struct {
	ID            int64           `db:"id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Price         decimal.Decimal `db:"price"`
	StockQuantity int             `db:"stock_quantity"`
	ImageURL      string          `db:"image_url"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r productRow) toDomain() *product.Product {
	return &product.Product{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		ImageURL:      r.ImageURL,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (int64, error) {
	const q = `INSERT INTO products (name, description, price, stock_quantity, image_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &id, q,
		p.Name, p.Description, p.Price, p.StockQuantity, p.ImageURL, p.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("products: insert: %w", err)
	}
	return id, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	const q = `UPDATE products
		SET name = $2, description = $3, price = $4, stock_quantity = $5, image_url = $6, updated_at = now()
		WHERE id = $1`

	res, err := r.db.ext(ctx).ExecContext(ctx, q,
		p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.ImageURL)
	if err != nil {
		return fmt.Errorf("products: update %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ext(ctx).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("products: delete %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	const q = `SELECT id, name, description, price, stock_quantity, image_url, updated_at
		FROM products WHERE id = $1`

	var row productRow
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("products: get %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, offset, limit int) ([]product.Product, error) {
	const q = `SELECT id, name, description, price, stock_quantity, image_url, updated_at
		FROM products ORDER BY id OFFSET $1 LIMIT $2`

	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows, q, offset, limit); err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	out := make([]product.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

// DecrementStockIfAvailable performs the guarded decrement in one UPDATE so
// concurrent placements can never drive stock negative.
func (r *ProductRepository) DecrementStockIfAvailable(ctx context.Context, id int64, quantity int) error {
	if quantity <= 0 {
		return product.ErrInvalidQuantity
	}

	const q = `UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2`

	res, err := r.db.ext(ctx).ExecContext(ctx, q, id, quantity)
	if err != nil {
		return fmt.Errorf("products: decrement %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("products: decrement %d: %w", id, err)
	}
	if n == 0 {
		// Zero rows means either a vanished product or not enough stock;
		// tell them apart for the caller's error message.
		var exists bool
		if err := sqlx.GetContext(ctx, r.db.ext(ctx), &exists,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("products: decrement %d: %w", id, err)
		}
		if !exists {
			return product.ErrNotFound
		}
		return product.ErrInsufficientStock
	}
	return nil
}
