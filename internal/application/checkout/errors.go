package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart rejects placement attempts with nothing to buy.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrPaymentTimeout means the gateway did not answer within the
	// configured bound. No charge is assumed to have happened.
	ErrPaymentTimeout = errors.New("checkout: payment timed out")
)

// ProductNotFoundError reports a cart line referencing a product that no
// longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("checkout: product %d not found", e.ProductID)
}

// InsufficientStockError reports the first cart line whose requested
// quantity exceeds live stock.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("checkout: not enough stock for product %q (id %d): available %d, requested %d",
		e.ProductName, e.ProductID, e.Available, e.Requested)
}

// PaymentDeclinedError carries the gateway's decline message. No persistent
// state has changed when it is returned.
type PaymentDeclinedError struct {
	Message string
}

func (e *PaymentDeclinedError) Error() string {
	return "checkout: payment failed: " + e.Message
}

// AfterPaymentError is the critical failure mode: the charge succeeded but
// the order could not be durably recorded. TransactionID is the support
// reference the user must be given; a FAILED reconciliation order carrying
// it has been written on a best-effort basis.
type AfterPaymentError struct {
	TransactionID string
	Err           error
}

func (e *AfterPaymentError) Error() string {
	return fmt.Sprintf("checkout: order placement failed after payment (ref %s): %v", e.TransactionID, e.Err)
}

func (e *AfterPaymentError) Unwrap() error { return e.Err }
