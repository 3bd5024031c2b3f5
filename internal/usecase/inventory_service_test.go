package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rooted-backend/internal/domain"
)

func TestDecrementReducesStock(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	ctx := context.Background()

	err := f.inventorySvc.Decrement(ctx, "ST1", []domain.LineItem{
		{ProductID: "P1", VariantID: "V1", Quantity: 2},
	})
	require.NoError(t, err)

	inv, err := f.inventory.GetByStore(ctx, "ST1")
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Products[0].Variants[0].Stock)
	assert.Equal(t, 3, inv.Products[0].Stock)
}

func TestDecrementNeverGoesNegative(t *testing.T) {
	f := newFixture()
	f.seedStore(1, 100, 0)
	ctx := context.Background()

	err := f.inventorySvc.Decrement(ctx, "ST1", []domain.LineItem{
		{ProductID: "P1", VariantID: "V1", Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.variantStock(ctx))
}

func TestDecrementSkipsUnknownLines(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	ctx := context.Background()

	err := f.inventorySvc.Decrement(ctx, "ST1", []domain.LineItem{
		{ProductID: "GONE", VariantID: "VX", Quantity: 1},
		{ProductID: "P1", VariantID: "V1", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.variantStock(ctx))
}

func TestDecrementUnknownStore(t *testing.T) {
	f := newFixture()
	err := f.inventorySvc.Decrement(context.Background(), "NOPE", []domain.LineItem{
		{ProductID: "P1", VariantID: "V1", Quantity: 1},
	})
	assert.IsType(t, ErrNotFound(""), err)
}
