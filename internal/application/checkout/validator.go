package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront-go/storefront/internal/domain/cart"
	"github.com/storefront-go/storefront/internal/domain/product"
)

// validateStock checks a cart snapshot against live product stock. It is
// read-only and fail-fast: the first violation is reported and nothing is
// aggregated. Calling it twice on unchanged state yields the same result.
func (s *Service) validateStock(ctx context.Context, snap *cart.Snapshot) error {
	if snap.Empty() {
		return ErrEmptyCart
	}
	for _, line := range snap.Lines {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return &ProductNotFoundError{ProductID: line.ProductID}
			}
			return fmt.Errorf("checkout: load product %d: %w", line.ProductID, err)
		}
		if p.StockQuantity < line.Quantity {
			return &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   line.Quantity,
				Available:   p.StockQuantity,
			}
		}
	}
	return nil
}
