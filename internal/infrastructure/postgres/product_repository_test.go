package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/infrastructure/postgres"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = raw.Close()
	})
	return postgres.NewFromPool(sqlx.NewDb(raw, "sqlmock")), mock
}

const decrementQuery = `UPDATE products
			SET stock_quantity = stock_quantity - $2, updated_at = now()
			WHERE id = $1 AND stock_quantity >= $2`

func TestDecrementStockIfAvailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(decrementQuery)).
		WithArgs(int64(42), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DecrementStockIfAvailable(context.Background(), 42, 2)
	assert.NoError(t, err)
}

func TestDecrementStockGuardedAgainstOversell(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewProductRepository(db)

	// The guarded UPDATE touches no rows, but the product exists.
	mock.ExpectExec(regexp.QuoteMeta(decrementQuery)).
		WithArgs(int64(42), 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.DecrementStockIfAvailable(context.Background(), 42, 10)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(decrementQuery)).
		WithArgs(int64(9999), 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`)).
		WithArgs(int64(9999)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.DecrementStockIfAvailable(context.Background(), 9999, 1)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestDecrementStockRejectsNonPositiveQuantity(t *testing.T) {
	db, _ := newMockDB(t)
	repo := postgres.NewProductRepository(db)

	err := repo.DecrementStockIfAvailable(context.Background(), 42, 0)
	assert.ErrorIs(t, err, product.ErrInvalidQuantity)
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewProductRepository(db)

	mock.ExpectQuery("SELECT id, name, description, price, stock_quantity, image_url, updated_at").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, product.ErrNotFound)
}
