package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/storefront-go/storefront/internal/domain/order"
)

type OrderRepository struct {
	mu         sync.RWMutex
	nextID     int64
	nextLineID int64
	orders     map[int64]*order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[int64]*order.Order),
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (int64, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	clone := o.Clone()
	clone.ID = r.nextID
	r.orders[clone.ID] = clone
	o.ID = clone.ID
	return clone.ID, nil
}

func (r *OrderRepository) AddLine(ctx context.Context, l order.Line) (int64, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[l.OrderID]
	if !ok {
		return 0, order.ErrNotFound
	}
	r.nextLineID++
	l.ID = r.nextLineID
	o.Lines = append(o.Lines, l)
	return l.ID, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *OrderRepository) GetWithLines(ctx context.Context, id int64) (*order.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]order.Order, error) {
	return r.list(ctx, offset, limit, func(o *order.Order) bool { return o.UserID == userID })
}

func (r *OrderRepository) ListAll(ctx context.Context, offset, limit int) ([]order.Order, error) {
	return r.list(ctx, offset, limit, func(*order.Order) bool { return true })
}

func (r *OrderRepository) list(ctx context.Context, offset, limit int, match func(*order.Order) bool) ([]order.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if match(o) {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	out := make([]order.Order, 0, limit)
	for i := offset; i < len(matched) && len(out) < limit; i++ {
		out = append(out, *matched[i].Clone())
	}
	return out, nil
}
