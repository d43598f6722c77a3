package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/storefront-go/storefront/internal/domain/cart"
)

type CartRepository struct {
	db *DB
}

func NewCartRepository(db *DB) *CartRepository {
	return &CartRepository{db: db}
}

type cartItemRow struct {
	ID        int64 `db:"id"`
	CartID    int64 `db:"cart_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

// GetOrCreate returns the user's cart, creating the row on first use. Each
// user has exactly one cart (unique user_id).
func (r *CartRepository) GetOrCreate(ctx context.Context, userID int64) (*cart.Cart, error) {
	const upsert = `INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`

	var cartID int64
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &cartID, upsert, userID); err != nil {
		return nil, fmt.Errorf("carts: get or create: %w", err)
	}

	const itemsQ = `SELECT id, cart_id, product_id, quantity
		FROM cart_items WHERE cart_id = $1 ORDER BY id`

	var rows []cartItemRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows, itemsQ, cartID); err != nil {
		return nil, fmt.Errorf("carts: load items: %w", err)
	}

	c := &cart.Cart{ID: cartID, UserID: userID}
	for _, row := range rows {
		c.Items = append(c.Items, cart.Item{
			ID:        row.ID,
			CartID:    row.CartID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
		})
	}
	return c, nil
}

// AddItem merges with an existing line for the same product.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}

	const q = `INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	if _, err := r.db.ext(ctx).ExecContext(ctx, q, cartID, productID, quantity); err != nil {
		return fmt.Errorf("carts: add item: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}

	const q = `UPDATE cart_items SET quantity = $3 WHERE id = $2 AND cart_id = $1`

	res, err := r.db.ext(ctx).ExecContext(ctx, q, cartID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("carts: update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	const q = `DELETE FROM cart_items WHERE id = $2 AND cart_id = $1`

	res, err := r.db.ext(ctx).ExecContext(ctx, q, cartID, itemID)
	if err != nil {
		return fmt.Errorf("carts: remove item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	if _, err := r.db.ext(ctx).ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("carts: clear: %w", err)
	}
	return nil
}
