package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rooted-backend/internal/domain"
)

func TestPriceCartSubtotal(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(2)

	priced, err := f.pricing.PriceCart(context.Background(), "9111111111", "ST1")
	require.NoError(t, err)
	require.Len(t, priced.Products, 1)

	line := priced.Products[0]
	assert.Equal(t, "Tomatoes", line.ProductName)
	assert.Equal(t, "1 kg", line.VariantName)
	assert.Equal(t, 100.0, line.Price)
	assert.False(t, line.OutOfStock)
	assert.Equal(t, 200.0, priced.SubTotal)
}

func TestPriceCartPrefersOfferPrice(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 80)
	f.seedCart(2)

	priced, err := f.pricing.PriceCart(context.Background(), "9111111111", "ST1")
	require.NoError(t, err)
	assert.Equal(t, 160.0, priced.SubTotal)
}

func TestPriceCartFlagsOutOfStock(t *testing.T) {
	f := newFixture()
	f.seedStore(1, 100, 0)
	f.seedCart(2)

	priced, err := f.pricing.PriceCart(context.Background(), "9111111111", "ST1")
	require.NoError(t, err)
	require.Len(t, priced.Products, 1)
	assert.True(t, priced.Products[0].OutOfStock)
	assert.True(t, priced.HasOutOfStock())
	assert.Equal(t, 0.0, priced.SubTotal)
}

func TestPriceCartIdempotent(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 33.33, 0)
	f.seedCart(3)

	first, err := f.pricing.PriceCart(context.Background(), "9111111111", "ST1")
	require.NoError(t, err)
	second, err := f.pricing.PriceCart(context.Background(), "9111111111", "ST1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 99.99, first.SubTotal)
}

func TestPriceCartRetainsUnknownLineAtZero(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	_ = f.carts.Create(context.Background(), &domain.Cart{
		ID:    "CARTX",
		Phone: "9111111111",
		Products: []domain.CartLine{
			{ProductID: "P1", VariantID: "V1", Quantity: 1},
			{ProductID: "GONE", VariantID: "VX", Quantity: 4},
		},
	})

	priced, err := f.pricing.PriceCart(context.Background(), "9111111111", "ST1")
	require.NoError(t, err)
	require.Len(t, priced.Products, 2)
	assert.Equal(t, 0.0, priced.Products[1].Price)
	assert.Equal(t, 100.0, priced.SubTotal)
}

func TestPriceCartEmptyWhenNoCart(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)

	priced, err := f.pricing.PriceCart(context.Background(), "9999999999", "ST1")
	require.NoError(t, err)
	assert.Empty(t, priced.Products)
	assert.Equal(t, 0.0, priced.SubTotal)
}
