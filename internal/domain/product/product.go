package product

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrInvalidName       = errors.New("product: name is required")
	ErrNegativePrice     = errors.New("product: price must be zero or greater")
	ErrNegativeStock     = errors.New("product: stock must be zero or greater")
	ErrInvalidQuantity   = errors.New("product: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	ImageURL      string
	UpdatedAt     time.Time
}

func New(name, description string, price decimal.Decimal, stock int, imageURL string) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	return &Product{
		Name:          name,
		Description:   description,
		Price:         price,
		StockQuantity: stock,
		ImageURL:      imageURL,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}

type Repository interface {
	Create(ctx context.Context, p *Product) (int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, offset, limit int) ([]Product, error)

	// DecrementStockIfAvailable atomically subtracts quantity from the
	// product's stock, failing with ErrInsufficientStock when the remaining
	// stock would go negative. The check and the write happen in a single
	// store operation so concurrent placements cannot oversell.
	DecrementStockIfAvailable(ctx context.Context, id int64, quantity int) error
}
