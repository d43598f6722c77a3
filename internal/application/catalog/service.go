package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/pkg/logging"
)

const (
	defaultPageSize = 100
	maxPageSize     = 200
)

// Service exposes catalog reads to everyone and writes to admins; the
// transport layer enforces who calls what.
type Service struct {
	products product.Repository
}

func NewService(products product.Repository) *Service {
	return &Service{products: products}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

func (s *Service) Create(ctx context.Context, in CreateProductInput) (*product.Product, error) {
	p, err := product.New(in.Name, in.Description, in.Price, in.Stock, in.ImageURL)
	if err != nil {
		return nil, err
	}
	id, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("catalog: create product: %w", err)
	}
	p.ID = id

	logging.FromContext(ctx).Info("product_created",
		zap.Int64("product_id", id),
		zap.String("name", p.Name),
	)
	return p, nil
}

type UpdateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateProductInput) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, product.ErrInvalidName
	}
	if in.Price.IsNegative() {
		return nil, product.ErrNegativePrice
	}
	if in.Stock < 0 {
		return nil, product.ErrNegativeStock
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.StockQuantity = in.Stock
	p.ImageURL = in.ImageURL

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: update product %d: %w", id, err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("product_deleted", zap.Int64("product_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*product.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]product.Product, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.products.List(ctx, offset, limit)
}
