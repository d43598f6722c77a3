package order

import "time"

// PlacedEvent is emitted after a placement attempt commits, for consumers
// such as the confirmation notifier. Delivery is best-effort and never
// affects the outcome of the placement itself.
type PlacedEvent struct {
	OrderID    int64
	UserID     int64
	Total      string
	TxnID      string
	OccurredAt time.Time
}

func (PlacedEvent) EventName() string { return "order.placed" }

func NewPlacedEvent(o *Order) PlacedEvent {
	return PlacedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Total:      o.TotalAmount.StringFixed(2),
		TxnID:      o.PaymentTxnID,
		OccurredAt: time.Now().UTC(),
	}
}
