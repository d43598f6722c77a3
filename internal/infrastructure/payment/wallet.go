package payment

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/payment"
)

// WalletStrategy charges a hosted wallet account through the simulated
// wallet gateway.
type WalletStrategy struct {
	gateway
}

func NewWalletStrategy(opts ...Option) *WalletStrategy {
	s := &WalletStrategy{gateway: newGateway("wlt_txn_", "wallet processing failed", 0.95)}
	for _, opt := range opts {
		opt(&s.gateway)
	}
	return s
}

func (s *WalletStrategy) Key() string { return MethodWallet }

func (s *WalletStrategy) Charge(ctx context.Context, amount decimal.Decimal, details map[string]string) (payment.Outcome, error) {
	email := details["wallet_email"]
	if email == "" || !strings.Contains(email, "@") {
		return payment.Outcome{Status: payment.StatusError, Message: "wallet email is missing or malformed"}, payment.ErrInvalidDetails
	}
	_ = amount
	return s.call(ctx)
}
