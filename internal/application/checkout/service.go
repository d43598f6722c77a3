package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/storefront-go/storefront/internal/domain/cart"
	"github.com/storefront-go/storefront/internal/domain/order"
	"github.com/storefront-go/storefront/internal/domain/payment"
	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/pkg/logging"
)

const (
	tracerName     = "storefront.checkout"
	publishTimeout = 300 * time.Millisecond
)

// Service coordinates one order placement: snapshot, stock validation,
// charge, transactional persistence and cart clear. It holds no per-request
// state, so one instance serves concurrent placements.
type Service struct {
	carts    CartPort
	products ProductPort
	orders   OrderPort
	charger  payment.Charger
	tx       TxRunner
	events   EventPublisher
	metrics  *Metrics
	tracer   trace.Tracer
}

func NewService(
	carts CartPort,
	products ProductPort,
	orders OrderPort,
	charger payment.Charger,
	tx TxRunner,
	events EventPublisher,
	metrics *Metrics,
) *Service {
	return &Service{
		carts:    carts,
		products: products,
		orders:   orders,
		charger:  charger,
		tx:       tx,
		events:   events,
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
	}
}

// PlaceOrder executes one placement attempt for the user's current cart.
//
// Aborts before the charge leave no persistent state behind. After a
// successful charge the four order writes (order row, lines, stock
// decrements, status advance) are applied in a single transaction; if that
// transaction fails the compensation path records a FAILED reconciliation
// order and returns an AfterPaymentError carrying the gateway transaction
// id. A failed cart clear is logged and does not fail the placement.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, methodKey string, details map[string]string) (_ *order.Order, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "checkout"),
		zap.Int64("user_id", userID),
	)

	ctx, span := s.tracer.Start(ctx, "PlaceOrder",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.String("payment.method", methodKey),
		),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		s.metrics.observe(outcome, time.Since(start).Seconds())
	}()

	snap, err := s.carts.Snapshot(ctx, userID)
	if err != nil && !errors.Is(err, cart.ErrNotFound) {
		outcome = "error"
		return nil, fmt.Errorf("checkout: load cart: %w", err)
	}
	if snap.Empty() {
		outcome = "rejected"
		return nil, ErrEmptyCart
	}

	if err = s.validateStock(ctx, snap); err != nil {
		outcome = "rejected"
		logger.Info("placement_rejected", zap.Error(err))
		return nil, err
	}

	// Caller-initiated cancellation before the charge aborts cleanly.
	if err = ctx.Err(); err != nil {
		outcome = "canceled"
		return nil, err
	}

	chargeOutcome, err := s.charge(ctx, span, snap.Total, details, methodKey)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentTimeout):
			outcome = "timeout"
		case errors.Is(err, payment.ErrUnknownMethod), errors.Is(err, payment.ErrInvalidDetails):
			outcome = "rejected"
		default:
			outcome = "declined"
		}
		return nil, err
	}

	orderID, err := s.persist(ctx, snap, chargeOutcome.TransactionID)
	if err != nil {
		outcome = "after_payment_failure"
		return nil, s.compensate(ctx, logger, snap, chargeOutcome.TransactionID, err)
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		// The order is committed; losing the clear only means stale cart
		// contents, never a lost sale.
		logger.Warn("cart_clear_failed", zap.Int64("order_id", orderID), zap.Error(err))
	}

	placed, err := s.orders.GetWithLines(ctx, orderID)
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("checkout: load placed order %d: %w", orderID, err)
	}

	s.publishPlaced(ctx, logger, placed)

	logger.Info("order_placed",
		zap.Int64("order_id", placed.ID),
		zap.String("total", placed.TotalAmount.StringFixed(2)),
		zap.String("txn_id", placed.PaymentTxnID),
	)
	return placed, nil
}

func (s *Service) charge(ctx context.Context, span trace.Span, total decimal.Decimal, details map[string]string, methodKey string) (payment.Outcome, error) {
	out, err := s.charger.Process(ctx, total, details, methodKey)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return out, ErrPaymentTimeout
		}
		return out, fmt.Errorf("checkout: charge: %w", err)
	}
	if !out.Succeeded() {
		return out, &PaymentDeclinedError{Message: out.Message}
	}
	span.AddEvent("payment.charged",
		trace.WithAttributes(attribute.String("payment.txn_id", out.TransactionID)),
	)
	return out, nil
}

// persist applies the four placement writes as one transaction: order row
// in PENDING, lines priced from the snapshot, conditional stock decrements,
// then the advance to PROCESSING. The decrement re-checks availability at
// write time; validation alone is not trusted under concurrency.
func (s *Service) persist(ctx context.Context, snap *cart.Snapshot, txnID string) (int64, error) {
	var orderID int64
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		o, err := order.New(snap.UserID, snap.Total)
		if err != nil {
			return err
		}
		o.PaymentTxnID = txnID

		orderID, err = s.orders.Create(ctx, o)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range snap.Lines {
			l, err := order.NewLine(line.ProductID, line.Quantity, line.UnitPrice)
			if err != nil {
				return err
			}
			l.OrderID = orderID
			if _, err := s.orders.AddLine(ctx, l); err != nil {
				return fmt.Errorf("add order line (product %d): %w", line.ProductID, err)
			}
		}

		for _, line := range snap.Lines {
			if err := s.products.DecrementStockIfAvailable(ctx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, product.ErrInsufficientStock) {
					return fmt.Errorf("stock changed for product %d: %w", line.ProductID, err)
				}
				return fmt.Errorf("decrement stock (product %d): %w", line.ProductID, err)
			}
		}

		if err := s.orders.UpdateStatus(ctx, orderID, order.StatusProcessing); err != nil {
			return fmt.Errorf("advance order %d: %w", orderID, err)
		}
		return nil
	})
	return orderID, err
}

// compensate handles the post-payment persistence failure: money has moved
// but the order is not recorded. It writes a FAILED reconciliation order
// carrying the transaction id and the snapshot lines so the sale is
// recoverable, then surfaces the support reference to the caller. The stub
// write is best-effort and detached from the caller's cancellation.
func (s *Service) compensate(ctx context.Context, logger *zap.Logger, snap *cart.Snapshot, txnID string, cause error) error {
	logger.Error("placement_failed_after_payment",
		zap.String("txn_id", txnID),
		zap.Error(cause),
	)

	ctx = context.WithoutCancel(ctx)

	stub, err := order.New(snap.UserID, snap.Total)
	if err == nil {
		stub.PaymentTxnID = txnID
		if err = stub.MarkFailed(); err == nil {
			var stubID int64
			stubID, err = s.orders.Create(ctx, stub)
			if err == nil {
				for _, line := range snap.Lines {
					l := order.Line{
						OrderID:         stubID,
						ProductID:       line.ProductID,
						Quantity:        line.Quantity,
						PriceAtPurchase: line.UnitPrice,
					}
					if _, lineErr := s.orders.AddLine(ctx, l); lineErr != nil {
						logger.Error("reconciliation_line_write_failed",
							zap.Int64("order_id", stubID),
							zap.Int64("product_id", line.ProductID),
							zap.Error(lineErr),
						)
					}
				}
				logger.Info("reconciliation_order_recorded",
					zap.Int64("order_id", stubID),
					zap.String("txn_id", txnID),
				)
			}
		}
	}
	if err != nil {
		logger.Error("reconciliation_write_failed",
			zap.String("txn_id", txnID),
			zap.Error(err),
		)
	}

	return &AfterPaymentError{TransactionID: txnID, Err: cause}
}

func (s *Service) publishPlaced(ctx context.Context, logger *zap.Logger, o *order.Order) {
	if s.events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pubCtx, order.NewPlacedEvent(o)); err != nil {
		logger.Warn("order_placed_event_publish_failed",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}
}
