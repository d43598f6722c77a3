// Package notify consumes post-commit order events and sends the customer
// confirmation. Delivery is simulated; failures never reach the placement
// flow.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/storefront-go/storefront/internal/domain/order"
	"github.com/storefront-go/storefront/internal/domain/outbox"
)

type Worker struct {
	subscriber outbox.Subscriber
	log        *zap.Logger
}

func New(subscriber outbox.Subscriber, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		subscriber: subscriber,
		log:        logger.With(zap.String("component", "notify_worker")),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(order.PlacedEvent{}.EventName(), w.handleOrderPlaced)
}

func (w *Worker) handleOrderPlaced(ctx context.Context, e outbox.Event) error {
	_ = ctx

	evt, ok := e.(order.PlacedEvent)
	if !ok {
		return nil
	}

	// Stand-in for a real mail/SMS integration.
	w.log.Info("order_confirmation_sent",
		zap.Int64("order_id", evt.OrderID),
		zap.Int64("user_id", evt.UserID),
		zap.String("total", evt.Total),
		zap.String("txn_id", evt.TxnID),
	)
	return nil
}
