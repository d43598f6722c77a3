package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront-go/storefront/internal/domain/cart"
	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/pkg/logging"
)

// Service manages the per-user cart and produces the priced snapshots the
// checkout flow consumes.
type Service struct {
	carts    cart.Repository
	products product.Repository
}

func NewService(carts cart.Repository, products product.Repository) *Service {
	return &Service{carts: carts, products: products}
}

// View is the cart as presented to the user: item ids for editing, live
// unit prices and a running total.
type View struct {
	CartID int64
	UserID int64
	Items  []ViewItem
	Total  decimal.Decimal
}

type ViewItem struct {
	ItemID      int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Details returns the user's cart priced against the live catalog. Items
// whose product has been removed from the catalog are skipped.
func (s *Service) Details(ctx context.Context, userID int64) (*View, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	view := &View{CartID: c.ID, UserID: userID, Total: decimal.Zero}
	for _, item := range c.Items {
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("cart: load product %d: %w", item.ProductID, err)
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, ViewItem{
			ItemID:      item.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   p.Price,
			LineTotal:   lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}
	return view, nil
}

// Snapshot captures the cart for one placement attempt: unit prices are
// frozen at this read and the total is computed from them.
func (s *Service) Snapshot(ctx context.Context, userID int64) (*cart.Snapshot, error) {
	view, err := s.Details(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]cart.SnapshotLine, 0, len(view.Items))
	for _, item := range view.Items {
		lines = append(lines, cart.SnapshotLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return cart.NewSnapshot(userID, lines), nil
}

// AddItem puts quantity units of a product into the user's cart, merging
// with any existing line. The combined quantity must fit current stock.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, quantity int) (*View, error) {
	if quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	requested := quantity
	for _, item := range c.Items {
		if item.ProductID == productID {
			requested += item.Quantity
			break
		}
	}
	if requested > p.StockQuantity {
		return nil, fmt.Errorf("cart: not enough stock for %q: available %d, requested %d: %w",
			p.Name, p.StockQuantity, requested, product.ErrInsufficientStock)
	}

	if err := s.carts.AddItem(ctx, c.ID, productID, quantity); err != nil {
		return nil, fmt.Errorf("cart: add item: %w", err)
	}

	logging.FromContext(ctx).Info("cart_item_added",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return s.Details(ctx, userID)
}

// UpdateItem changes an item's quantity; zero or less removes the item.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*View, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	if quantity <= 0 {
		if err := s.carts.RemoveItem(ctx, c.ID, itemID); err != nil {
			return nil, err
		}
		return s.Details(ctx, userID)
	}

	var target *cart.Item
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			target = &c.Items[i]
			break
		}
	}
	if target == nil {
		return nil, cart.ErrItemNotFound
	}

	p, err := s.products.GetByID(ctx, target.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > p.StockQuantity {
		return nil, fmt.Errorf("cart: not enough stock for %q: available %d, requested %d: %w",
			p.Name, p.StockQuantity, quantity, product.ErrInsufficientStock)
	}

	if err := s.carts.UpdateItemQuantity(ctx, c.ID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.Details(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) (*View, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	if err := s.carts.RemoveItem(ctx, c.ID, itemID); err != nil {
		return nil, err
	}
	return s.Details(ctx, userID)
}

// Clear empties the user's cart. Used both by the cart API and by checkout
// after a committed placement.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("cart: load: %w", err)
	}
	if err := s.carts.Clear(ctx, c.ID); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}
