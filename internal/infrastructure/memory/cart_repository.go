package memory

import (
	"context"
	"sync"

	"github.com/storefront-go/storefront/internal/domain/cart"
)

type CartRepository struct {
	mu         sync.RWMutex
	nextCartID int64
	nextItemID int64
	byUser     map[int64]*cart.Cart
	byID       map[int64]*cart.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{
		byUser: make(map[int64]*cart.Cart),
		byID:   make(map[int64]*cart.Cart),
	}
}

func (r *CartRepository) GetOrCreate(ctx context.Context, userID int64) (*cart.Cart, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byUser[userID]
	if !ok {
		r.nextCartID++
		c = &cart.Cart{ID: r.nextCartID, UserID: userID}
		r.byUser[userID] = c
		r.byID[c.ID] = c
	}
	return cloneCart(c), nil
}

func (r *CartRepository) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	_ = ctx
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[cartID]
	if !ok {
		return cart.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return nil
		}
	}
	r.nextItemID++
	c.Items = append(c.Items, cart.Item{
		ID:        r.nextItemID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error {
	_ = ctx
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[cartID]
	if !ok {
		return cart.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[cartID]
	if !ok {
		return cart.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (r *CartRepository) Clear(ctx context.Context, cartID int64) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[cartID]
	if !ok {
		return cart.ErrNotFound
	}
	c.Items = nil
	return nil
}

func cloneCart(c *cart.Cart) *cart.Cart {
	clone := *c
	clone.Items = append([]cart.Item(nil), c.Items...)
	return &clone
}
