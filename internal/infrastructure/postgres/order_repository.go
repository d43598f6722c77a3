package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/order"
)

type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderRow struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	Status       string          `db:"status"`
	PaymentTxnID string          `db:"payment_txn_id"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r orderRow) toDomain() order.Order {
	return order.Order{
		ID:           r.ID,
		UserID:       r.UserID,
		TotalAmount:  r.TotalAmount,
		Status:       order.Status(r.Status),
		PaymentTxnID: r.PaymentTxnID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type orderLineRow struct {
	ID              int64           `db:"id"`
	OrderID         int64           `db:"order_id"`
	ProductID       int64           `db:"product_id"`
	Quantity        int             `db:"quantity"`
	PriceAtPurchase decimal.Decimal `db:"price_at_purchase"`
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (int64, error) {
	const q = `INSERT INTO orders (user_id, total_amount, status, payment_txn_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &id, q,
		o.UserID, o.TotalAmount, string(o.Status), o.PaymentTxnID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("orders: insert: %w", err)
	}
	o.ID = id
	return id, nil
}

func (r *OrderRepository) AddLine(ctx context.Context, l order.Line) (int64, error) {
	const q = `INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &id, q,
		l.OrderID, l.ProductID, l.Quantity, l.PriceAtPurchase)
	if err != nil {
		return 0, fmt.Errorf("orders: insert line: %w", err)
	}
	return id, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	const q = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.ext(ctx).ExecContext(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("orders: update status %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) GetWithLines(ctx context.Context, id int64) (*order.Order, error) {
	const q = `SELECT id, user_id, total_amount, status, payment_txn_id, created_at, updated_at
		FROM orders WHERE id = $1`

	var row orderRow
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("orders: get %d: %w", id, err)
	}

	const linesQ = `SELECT id, order_id, product_id, quantity, price_at_purchase
		FROM order_items WHERE order_id = $1 ORDER BY id`

	var lineRows []orderLineRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &lineRows, linesQ, id); err != nil {
		return nil, fmt.Errorf("orders: load lines %d: %w", id, err)
	}

	o := row.toDomain()
	for _, lr := range lineRows {
		o.Lines = append(o.Lines, order.Line{
			ID:              lr.ID,
			OrderID:         lr.OrderID,
			ProductID:       lr.ProductID,
			Quantity:        lr.Quantity,
			PriceAtPurchase: lr.PriceAtPurchase,
		})
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]order.Order, error) {
	const q = `SELECT id, user_id, total_amount, status, payment_txn_id, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`

	var rows []orderRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows, q, userID, offset, limit); err != nil {
		return nil, fmt.Errorf("orders: list by user: %w", err)
	}
	return toDomainOrders(rows), nil
}

func (r *OrderRepository) ListAll(ctx context.Context, offset, limit int) ([]order.Order, error) {
	const q = `SELECT id, user_id, total_amount, status, payment_txn_id, created_at, updated_at
		FROM orders ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	var rows []orderRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows, q, offset, limit); err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	return toDomainOrders(rows), nil
}

func toDomainOrders(rows []orderRow) []order.Order {
	out := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
