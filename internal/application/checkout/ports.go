package checkout

import (
	"context"

	"github.com/storefront-go/storefront/internal/domain/cart"
	"github.com/storefront-go/storefront/internal/domain/order"
	"github.com/storefront-go/storefront/internal/domain/outbox"
	"github.com/storefront-go/storefront/internal/domain/product"
)

// EventPublisher receives the order-placed event after a successful
// placement. Delivery is best-effort.
type EventPublisher = outbox.Publisher

// CartPort is the narrow view of the cart store the placement flow needs:
// a priced snapshot to work from and a clear once the order is committed.
type CartPort interface {
	Snapshot(ctx context.Context, userID int64) (*cart.Snapshot, error)
	Clear(ctx context.Context, userID int64) error
}

// ProductPort exposes read access for validation and the conditional
// decrement used after a successful charge.
type ProductPort interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
	DecrementStockIfAvailable(ctx context.Context, id int64, quantity int) error
}

// OrderPort is the order store surface used by placement.
type OrderPort interface {
	Create(ctx context.Context, o *order.Order) (int64, error)
	AddLine(ctx context.Context, l order.Line) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) error
	GetWithLines(ctx context.Context, id int64) (*order.Order, error)
}

// TxRunner executes fn within one store transaction. Implementations carry
// the transaction in the context so the order and product ports join it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

