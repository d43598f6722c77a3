package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("order: not found")
	ErrInvalidQuantity   = errors.New("order: quantity must be greater than zero")
	ErrInvalidAmount     = errors.New("order: total amount must be zero or greater")
	ErrInvalidTransition = errors.New("order: invalid status transition")
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusFailed     Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled, StatusFailed},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order may move from its current status
// to the target. Delivered, cancelled and failed are terminal.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID          int64
	UserID      int64
	TotalAmount decimal.Decimal
	Status      Status
	// PaymentTxnID is the gateway transaction reference recorded with the
	// order; on FAILED reconciliation stubs it is the support reference.
	PaymentTxnID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []Line
}

// Line is a single purchased position. PriceAtPurchase is frozen at order
// creation and never re-read from the catalog.
type Line struct {
	ID              int64
	OrderID         int64
	ProductID       int64
	Quantity        int
	PriceAtPurchase decimal.Decimal
}

func New(userID int64, total decimal.Decimal) (*Order, error) {
	if total.IsNegative() {
		return nil, ErrInvalidAmount
	}
	now := time.Now().UTC()
	return &Order{
		UserID:      userID,
		TotalAmount: total,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func NewLine(productID int64, quantity int, priceAtPurchase decimal.Decimal) (Line, error) {
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	return Line{
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtPurchase: priceAtPurchase,
	}, nil
}

func (o *Order) Transition(to Status) error {
	if !o.Status.CanTransition(to) {
		return ErrInvalidTransition
	}
	o.Status = to
	o.touch()
	return nil
}

func (o *Order) MarkProcessing() error { return o.Transition(StatusProcessing) }
func (o *Order) MarkFailed() error     { return o.Transition(StatusFailed) }

// LinesTotal recomputes the sum of quantity times price-at-purchase. It must
// equal TotalAmount for any persisted order.
func (o *Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.PriceAtPurchase.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

type Repository interface {
	Create(ctx context.Context, o *Order) (int64, error)
	AddLine(ctx context.Context, l Line) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	GetWithLines(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]Order, error)
	ListAll(ctx context.Context, offset, limit int) ([]Order, error)
}
