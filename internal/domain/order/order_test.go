package order_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/domain/order"
)

func TestNewStartsPending(t *testing.T) {
	o, err := order.New(1, decimal.RequireFromString("25.00"))

	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestNewRejectsNegativeTotal(t *testing.T) {
	_, err := order.New(1, decimal.RequireFromString("-0.01"))
	assert.ErrorIs(t, err, order.ErrInvalidAmount)
}

func TestNewLineRejectsNonPositiveQuantity(t *testing.T) {
	for _, q := range []int{0, -1} {
		_, err := order.NewLine(42, q, decimal.RequireFromString("10.00"))
		assert.ErrorIs(t, err, order.ErrInvalidQuantity, "quantity %d", q)
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to order.Status }{
		{order.StatusPending, order.StatusProcessing},
		{order.StatusPending, order.StatusCancelled},
		{order.StatusPending, order.StatusFailed},
		{order.StatusProcessing, order.StatusShipped},
		{order.StatusProcessing, order.StatusCancelled},
		{order.StatusShipped, order.StatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to order.Status }{
		{order.StatusPending, order.StatusShipped},
		{order.StatusPending, order.StatusDelivered},
		{order.StatusProcessing, order.StatusPending},
		{order.StatusProcessing, order.StatusFailed},
		{order.StatusShipped, order.StatusCancelled},
		{order.StatusDelivered, order.StatusShipped},
		{order.StatusCancelled, order.StatusProcessing},
		{order.StatusFailed, order.StatusPending},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestTransitionRejectsInvalidMove(t *testing.T) {
	o, err := order.New(1, decimal.Zero)
	require.NoError(t, err)

	assert.ErrorIs(t, o.Transition(order.StatusDelivered), order.ErrInvalidTransition)
	assert.Equal(t, order.StatusPending, o.Status, "status must be unchanged after a rejected transition")

	require.NoError(t, o.MarkProcessing())
	assert.Equal(t, order.StatusProcessing, o.Status)
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, s := range []order.Status{order.StatusDelivered, order.StatusCancelled, order.StatusFailed} {
		for _, to := range []order.Status{
			order.StatusPending, order.StatusProcessing, order.StatusShipped,
			order.StatusDelivered, order.StatusCancelled, order.StatusFailed,
		} {
			assert.False(t, s.CanTransition(to), "%s -> %s", s, to)
		}
	}
}

func TestLinesTotalMatchesTotalAmount(t *testing.T) {
	o, err := order.New(1, decimal.RequireFromString("25.00"))
	require.NoError(t, err)

	l1, err := order.NewLine(42, 2, decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	l2, err := order.NewLine(7, 1, decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	o.Lines = append(o.Lines, l1, l2)

	assert.True(t, o.LinesTotal().Equal(o.TotalAmount))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, order.StatusPending.Valid())
	assert.True(t, order.StatusFailed.Valid())
	assert.False(t, order.Status("UNKNOWN").Valid())
	assert.False(t, order.Status("pending").Valid(), "statuses are case sensitive")
}
