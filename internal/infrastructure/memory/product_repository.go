package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/storefront-go/storefront/internal/domain/product"
)

type ProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]*product.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]*product.Product),
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (int64, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	clone := *p
	clone.ID = r.nextID
	r.products[clone.ID] = &clone
	return clone.ID, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *ProductRepository) List(ctx context.Context, offset, limit int) ([]product.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]product.Product, 0, limit)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, *r.products[ids[i]])
	}
	return out, nil
}

// DecrementStockIfAvailable checks and decrements under one lock, matching
// the conditional UPDATE of the Postgres repository.
func (r *ProductRepository) DecrementStockIfAvailable(ctx context.Context, id int64, quantity int) error {
	_ = ctx
	if quantity <= 0 {
		return product.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return product.ErrNotFound
	}
	if p.StockQuantity < quantity {
		return product.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	return nil
}
