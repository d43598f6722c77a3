package payment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/payment"
)

const (
	MethodCreditCard = "credit_card"
	MethodWallet     = "wallet"
)

// gateway simulates an external payment provider: bounded latency, a
// configurable decline rate and opaque transaction ids. Both concrete
// strategies share it.
type gateway struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
	latency     time.Duration
	txnPrefix   string
	declineMsg  string
}

func newGateway(txnPrefix, declineMsg string, successRate float64) gateway {
	return gateway{
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		successRate: successRate,
		latency:     50 * time.Millisecond,
		txnPrefix:   txnPrefix,
		declineMsg:  declineMsg,
	}
}

// call performs the simulated network round-trip. Cancellation and deadline
// expiry surface as the context's error; a decline is a failed outcome.
func (g *gateway) call(ctx context.Context) (payment.Outcome, error) {
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return payment.Outcome{Status: payment.StatusError, Message: "gateway call aborted"}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return payment.Outcome{Status: payment.StatusError, Message: "gateway call aborted"}, err
	}

	g.mu.Lock()
	ok := g.random.Float64() < g.successRate
	g.mu.Unlock()

	if !ok {
		return payment.Outcome{Status: payment.StatusFailed, Message: g.declineMsg}, nil
	}
	return payment.Outcome{
		Status:        payment.StatusSuccess,
		TransactionID: g.txnPrefix + uuid.NewString(),
		Message:       "payment successful",
	}, nil
}

// Option tweaks a simulated gateway, primarily for tests.
type Option func(*gateway)

func WithSuccessRate(rate float64) Option {
	return func(g *gateway) {
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		g.successRate = rate
	}
}

func WithLatency(d time.Duration) Option {
	return func(g *gateway) { g.latency = d }
}

// CardStrategy charges credit cards through the simulated card gateway.
type CardStrategy struct {
	gateway
}

func NewCardStrategy(opts ...Option) *CardStrategy {
	s := &CardStrategy{gateway: newGateway("cc_txn_", "credit card processing failed", 0.9)}
	for _, opt := range opts {
		opt(&s.gateway)
	}
	return s
}

func (s *CardStrategy) Key() string { return MethodCreditCard }

func (s *CardStrategy) Charge(ctx context.Context, amount decimal.Decimal, details map[string]string) (payment.Outcome, error) {
	if details["card_number"] == "" || details["expiry"] == "" || details["cvv"] == "" {
		return payment.Outcome{Status: payment.StatusError, Message: "card details are incomplete"}, payment.ErrInvalidDetails
	}
	_ = amount
	return s.call(ctx)
}
