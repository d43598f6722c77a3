package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcart "github.com/storefront-go/storefront/internal/application/cart"
	"github.com/storefront-go/storefront/internal/domain/cart"
	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/infrastructure/memory"
)

type cartFixture struct {
	service    *appcart.Service
	products   *memory.ProductRepository
	keyboardID int64
	cableID    int64
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	ctx := context.Background()

	products := memory.NewProductRepository()
	keyboard, err := product.New("Mechanical Keyboard", "", decimal.RequireFromString("10.00"), 5, "")
	require.NoError(t, err)
	keyboardID, err := products.Create(ctx, keyboard)
	require.NoError(t, err)

	cable, err := product.New("USB Cable", "", decimal.RequireFromString("5.00"), 1, "")
	require.NoError(t, err)
	cableID, err := products.Create(ctx, cable)
	require.NoError(t, err)

	return &cartFixture{
		service:    appcart.NewService(memory.NewCartRepository(), products),
		products:   products,
		keyboardID: keyboardID,
		cableID:    cableID,
	}
}

func TestAddItemAndTotals(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 1, f.keyboardID, 2)
	require.NoError(t, err)
	view, err := f.service.AddItem(ctx, 1, f.cableID, 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("25.00")), "total %s", view.Total)
}

func TestAddItemMergesQuantities(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 1, f.keyboardID, 2)
	require.NoError(t, err)
	view, err := f.service.AddItem(ctx, 1, f.keyboardID, 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestAddItemRejectsMergedQuantityOverStock(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 1, f.keyboardID, 4)
	require.NoError(t, err)

	// 4 already in the cart plus 2 more exceeds the 5 in stock.
	_, err = f.service.AddItem(ctx, 1, f.keyboardID, 2)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 1, f.keyboardID, 0)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	_, err = f.service.AddItem(ctx, 1, 9999, 1)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdateItemQuantity(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	view, err := f.service.AddItem(ctx, 1, f.keyboardID, 2)
	require.NoError(t, err)
	itemID := view.Items[0].ItemID

	view, err = f.service.UpdateItem(ctx, 1, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)

	_, err = f.service.UpdateItem(ctx, 1, itemID, 6)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)
}

func TestUpdateItemToZeroRemovesIt(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	view, err := f.service.AddItem(ctx, 1, f.keyboardID, 2)
	require.NoError(t, err)

	view, err = f.service.UpdateItem(ctx, 1, view.Items[0].ItemID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestUpdateUnknownItem(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.service.UpdateItem(context.Background(), 1, 9999, 2)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	view, err := f.service.AddItem(ctx, 1, f.keyboardID, 1)
	require.NoError(t, err)

	view, err = f.service.RemoveItem(ctx, 1, view.Items[0].ItemID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestClear(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 1, f.keyboardID, 2)
	require.NoError(t, err)
	require.NoError(t, f.service.Clear(ctx, 1))

	view, err := f.service.Details(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestDetailsSkipsVanishedProducts(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 1, f.keyboardID, 2)
	require.NoError(t, err)
	_, err = f.service.AddItem(ctx, 1, f.cableID, 1)
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, f.cableID))

	view, err := f.service.Details(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, f.keyboardID, view.Items[0].ProductID)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("20.00")))
}

func TestSnapshotFreezesPrices(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.service.AddItem(ctx, 1, f.keyboardID, 2)
	require.NoError(t, err)

	snap, err := f.service.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.True(t, snap.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, snap.Total.Equal(decimal.RequireFromString("20.00")))
	assert.False(t, snap.Empty())

	empty, err := f.service.Snapshot(ctx, 2)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}
