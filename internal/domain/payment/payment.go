package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownMethod  = errors.New("payment: unknown payment method")
	ErrInvalidAmount  = errors.New("payment: amount must be greater than zero")
	ErrInvalidDetails = errors.New("payment: malformed payment details")
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

// Outcome is the normalized result of a charge attempt. TransactionID is
// populated only on success; Message carries the gateway's human-readable
// reason otherwise.
type Outcome struct {
	Status        Status
	TransactionID string
	Message       string
}

func (o Outcome) Succeeded() bool { return o.Status == StatusSuccess }

// Strategy is one interchangeable way of charging an amount. An ordinary
// decline is a failed Outcome, not an error; only internal faults such as
// malformed details propagate as errors. A Strategy never partially
// charges: either a transaction id is produced or nothing happened.
type Strategy interface {
	// Key is the method identifier clients select the strategy by.
	Key() string
	Charge(ctx context.Context, amount decimal.Decimal, details map[string]string) (Outcome, error)
}

// Charger selects a strategy by method key and delegates the charge.
// A single attempt is made per call; retry policy belongs to the caller.
type Charger interface {
	Process(ctx context.Context, amount decimal.Decimal, details map[string]string, methodKey string) (Outcome, error)
}
