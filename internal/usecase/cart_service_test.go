package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddCreatesAndIncrements(t *testing.T) {
	f := newFixture()
	f.seedStore(2, 100, 0)
	ctx := context.Background()

	cart, err := f.cartSvc.Add(ctx, "9111111111", "ST1", "P1", "V1")
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 1, cart.Products[0].Quantity)

	cart, err = f.cartSvc.Add(ctx, "9111111111", "ST1", "P1", "V1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Products[0].Quantity)

	// Third unit exceeds the stock of 2.
	_, err = f.cartSvc.Add(ctx, "9111111111", "ST1", "P1", "V1")
	require.Error(t, err)
	assert.Equal(t, MsgOutOfStock, err.Error())
}

func TestCartRemoveDropsLineAtZero(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(1)
	ctx := context.Background()

	cart, err := f.cartSvc.Remove(ctx, "9111111111", "P1", "V1")
	require.NoError(t, err)
	assert.Empty(t, cart.Products)

	_, err = f.cartSvc.Remove(ctx, "9111111111", "P1", "V1")
	assert.Error(t, err)
}

func TestCartDeleteLine(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(3)

	cart, err := f.cartSvc.DeleteLine(context.Background(), "9111111111", "P1", "V1")
	require.NoError(t, err)
	assert.Empty(t, cart.Products)
}

func TestCartClearWithoutCartIsNoop(t *testing.T) {
	f := newFixture()
	assert.NoError(t, f.cartSvc.Clear(context.Background(), "9999999999"))
}
