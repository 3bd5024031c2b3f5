package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rooted-backend/internal/domain"
)

func seedCoupon(t *testing.T, f *fixture, c domain.Coupon) {
	t.Helper()
	if c.ID == "" {
		c.ID = c.CouponName
	}
	require.NoError(t, f.coupons.Create(context.Background(), &c))
}

func TestEvaluateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   domain.Coupon
		subTotal float64
		want     float64
	}{
		{
			name:     "percentage",
			coupon:   domain.Coupon{CouponName: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: 10},
			subTotal: 500,
			want:     50,
		},
		{
			name:     "percentage clamped to max",
			coupon:   domain.Coupon{CouponName: "SAVE50", DiscountType: domain.DiscountPercentage, DiscountValue: 50, MaxCouponAmount: 100},
			subTotal: 1000,
			want:     100,
		},
		{
			name:     "flat",
			coupon:   domain.Coupon{CouponName: "FLAT75", DiscountType: domain.DiscountFlat, DiscountValue: 75},
			subTotal: 500,
			want:     75,
		},
		{
			name:     "flat clamped to max",
			coupon:   domain.Coupon{CouponName: "FLAT500", DiscountType: domain.DiscountFlat, DiscountValue: 500, MaxCouponAmount: 100},
			subTotal: 1000,
			want:     100,
		},
		{
			name:     "flat capped at subtotal",
			coupon:   domain.Coupon{CouponName: "FLAT75", DiscountType: domain.DiscountFlat, DiscountValue: 75},
			subTotal: 40,
			want:     40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			seedCoupon(t, f, tt.coupon)
			res, err := f.couponSvc.Evaluate(context.Background(), tt.coupon.CouponName, tt.subTotal, "C1")
			require.NoError(t, err)
			require.True(t, res.OK, res.Message)
			assert.Equal(t, tt.want, res.Discount)
		})
	}
}

func TestEvaluateRejections(t *testing.T) {
	f := newFixture()
	seedCoupon(t, f, domain.Coupon{
		CouponName:     "ONCE",
		DiscountType:   domain.DiscountFlat,
		DiscountValue:  50,
		MinOrderAmount: 200,
		UsedBy:         []string{"C1"},
	})
	ctx := context.Background()

	res, err := f.couponSvc.Evaluate(ctx, "NOPE", 500, "C1")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, MsgCouponNotFound, res.Message)

	res, err = f.couponSvc.Evaluate(ctx, "ONCE", 500, "C1")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, MsgCouponUsed, res.Message)

	res, err = f.couponSvc.Evaluate(ctx, "ONCE", 150, "C2")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, MsgCouponMinimum)

	// below the minimum and already used: the minimum message wins
	res, err = f.couponSvc.Evaluate(ctx, "ONCE", 150, "C1")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, MsgCouponMinimum)
}

func TestEvaluateCaseInsensitiveLookup(t *testing.T) {
	f := newFixture()
	seedCoupon(t, f, domain.Coupon{CouponName: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: 10})

	res, err := f.couponSvc.Evaluate(context.Background(), "save10", 100, "C1")
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestSingleUseEnforcedAfterCommit(t *testing.T) {
	f := newFixture()
	seedCoupon(t, f, domain.Coupon{CouponName: "ONCE", DiscountType: domain.DiscountFlat, DiscountValue: 20})
	ctx := context.Background()

	res, err := f.couponSvc.Evaluate(ctx, "ONCE", 100, "C1")
	require.NoError(t, err)
	require.True(t, res.OK)

	require.NoError(t, f.couponSvc.Commit(ctx, "ONCE", "C1", "Q20250310ORD1"))

	res, err = f.couponSvc.Evaluate(ctx, "ONCE", 100, "C1")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, MsgCouponUsed, res.Message)
}

func TestCommitIdempotentPerOrder(t *testing.T) {
	f := newFixture()
	seedCoupon(t, f, domain.Coupon{CouponName: "ONCE", DiscountType: domain.DiscountFlat, DiscountValue: 20})
	ctx := context.Background()

	require.NoError(t, f.couponSvc.Commit(ctx, "ONCE", "C1", "Q20250310ORD1"))
	require.NoError(t, f.couponSvc.Commit(ctx, "ONCE", "C1", "Q20250310ORD1"))

	coupon, err := f.coupons.Get(ctx, "ONCE")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q20250310ORD1"}, coupon.RedeemedOrders)
	assert.Equal(t, []string{"C1"}, coupon.UsedBy)
}

func TestCreateCouponRejectsDuplicate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := &domain.Coupon{CouponName: "save10", DiscountType: domain.DiscountPercentage, DiscountValue: 10}
	require.NoError(t, f.couponSvc.CreateCoupon(ctx, first))
	assert.Equal(t, "SAVE10", first.ID)

	dup := &domain.Coupon{CouponName: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: 15}
	err := f.couponSvc.CreateCoupon(ctx, dup)
	require.Error(t, err)
	assert.IsType(t, ErrConflict(""), err)
}
