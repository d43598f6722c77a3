package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("cart: not found")
	ErrItemNotFound    = errors.New("cart: item not found")
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
)

// Cart is the persistent per-user cart. Each user owns exactly one.
type Cart struct {
	ID     int64
	UserID int64
	Items  []Item
}

type Item struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
}

// Snapshot is a priced, point-in-time view of a cart used for a single
// placement attempt. Unit prices are captured at read time and the total is
// computed from them; the snapshot is never persisted as-is.
type Snapshot struct {
	UserID int64
	Lines  []SnapshotLine
	Total  decimal.Decimal
}

type SnapshotLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (s *Snapshot) Empty() bool { return s == nil || len(s.Lines) == 0 }

// NewSnapshot computes the total from the given lines.
func NewSnapshot(userID int64, lines []SnapshotLine) *Snapshot {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return &Snapshot{UserID: userID, Lines: lines, Total: total}
}

type Repository interface {
	GetOrCreate(ctx context.Context, userID int64) (*Cart, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID int64) error
	Clear(ctx context.Context, cartID int64) error
}
