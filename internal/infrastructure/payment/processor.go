package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront-go/storefront/internal/domain/payment"
	"github.com/storefront-go/storefront/internal/pkg/logging"
)

// Processor holds the registered charge strategies and selects one by
// method key. Adding a payment method means registering another strategy;
// the checkout flow is never touched.
type Processor struct {
	strategies map[string]payment.Strategy
	defaultKey string
	fallback   bool
	timeout    time.Duration
}

type Options struct {
	// DefaultKey names the strategy substituted for unknown method keys
	// when Fallback is set.
	DefaultKey string
	// Fallback enables the legacy silent substitution of the default
	// strategy. When unset, unknown keys are rejected with
	// payment.ErrUnknownMethod.
	Fallback bool
	// ChargeTimeout bounds a single gateway call. Zero means no bound.
	ChargeTimeout time.Duration
}

func NewProcessor(opts Options, strategies ...payment.Strategy) *Processor {
	m := make(map[string]payment.Strategy, len(strategies))
	for _, s := range strategies {
		m[s.Key()] = s
	}
	return &Processor{
		strategies: m,
		defaultKey: opts.DefaultKey,
		fallback:   opts.Fallback,
		timeout:    opts.ChargeTimeout,
	}
}

// Process resolves the method key and delegates the charge. One attempt per
// call; declines come back as failed outcomes, not errors.
func (p *Processor) Process(ctx context.Context, amount decimal.Decimal, details map[string]string, methodKey string) (payment.Outcome, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "payment_processor"))

	if !amount.IsPositive() {
		return payment.Outcome{Status: payment.StatusError, Message: "amount must be greater than zero"}, payment.ErrInvalidAmount
	}

	strategy, ok := p.strategies[methodKey]
	if !ok {
		if !p.fallback {
			logger.Warn("unknown_payment_method", zap.String("method", methodKey))
			return payment.Outcome{Status: payment.StatusError, Message: "unknown payment method: " + methodKey}, payment.ErrUnknownMethod
		}
		logger.Warn("payment_method_fallback",
			zap.String("method", methodKey),
			zap.String("fallback", p.defaultKey),
		)
		strategy, ok = p.strategies[p.defaultKey]
		if !ok {
			return payment.Outcome{Status: payment.StatusError, Message: "no default payment strategy configured"}, payment.ErrUnknownMethod
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	logger.Info("charge_start",
		zap.String("method", strategy.Key()),
		zap.String("amount", amount.StringFixed(2)),
	)
	outcome, err := strategy.Charge(ctx, amount, details)
	if err != nil {
		logger.Error("charge_error", zap.String("method", strategy.Key()), zap.Error(err))
		return outcome, err
	}

	logger.Info("charge_done",
		zap.String("method", strategy.Key()),
		zap.String("status", string(outcome.Status)),
		zap.String("txn_id", outcome.TransactionID),
	)
	return outcome, nil
}
