package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront-go/storefront/internal/domain/order"
	"github.com/storefront-go/storefront/internal/pkg/logging"
)

const (
	defaultPageSize = 100
	maxPageSize     = 200
)

// Service is the order read side plus the admin status update; placement
// itself lives in the checkout package.
type Service struct {
	orders order.Repository
}

func NewService(orders order.Repository) *Service {
	return &Service{orders: orders}
}

// Get returns one order with its lines. Non-admin callers only see their
// own orders; anything else reads as not found.
func (s *Service) Get(ctx context.Context, requesterID int64, admin bool, orderID int64) (*order.Order, error) {
	o, err := s.orders.GetWithLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != requesterID {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, offset, limit int) ([]order.Order, error) {
	offset, limit = clampPage(offset, limit)
	return s.orders.ListByUser(ctx, userID, offset, limit)
}

func (s *Service) ListAll(ctx context.Context, offset, limit int) ([]order.Order, error) {
	offset, limit = clampPage(offset, limit)
	return s.orders.ListAll(ctx, offset, limit)
}

// UpdateStatus applies an admin-driven lifecycle transition, rejecting
// moves the order state machine does not allow.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status order.Status) (*order.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("orders: %w: unknown status %q", order.ErrInvalidTransition, status)
	}

	o, err := s.orders.GetWithLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Transition(status); err != nil {
		return nil, fmt.Errorf("orders: %s -> %s: %w", o.Status, status, order.ErrInvalidTransition)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("orders: update status: %w", err)
	}

	logging.FromContext(ctx).Info("order_status_updated",
		zap.Int64("order_id", orderID),
		zap.String("status", string(status)),
	)
	return o, nil
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}
