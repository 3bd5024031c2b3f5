package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rooted-backend/internal/cache"
	"rooted-backend/internal/domain"
)

func createOrderReq() *CreateOrderRequest {
	return &CreateOrderRequest{
		Phone:      "9111111111",
		CustomerID: "C1",
		AddressID:  "A1",
		StoreID:    "ST1",
		OrderType:  domain.OrderTypeQuick,
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	res, err := f.orderSvc.CreateOrder(ctx, createOrderReq())
	require.NoError(t, err)
	assert.Equal(t, "Q20250310ORD1", res.OrderID)
	assert.Equal(t, "https://pay.example/checkout", res.PaymentURL)

	order, err := f.orders.Get(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderNew, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentDetails.PaymentStatus)
	assert.Equal(t, 200.0, order.PriceDetails.SubTotal)
	// 200 + 20 delivery + 5 packaging + 3 platform
	assert.Equal(t, 228.0, order.PriceDetails.TotalPrice)
	assert.Equal(t, "Asha", order.CustomerDetails.Name)
	assert.Equal(t, "Fresh Corner", order.StoreDetails.StoreName)

	// Payment is still pending: nothing is reserved yet.
	assert.Equal(t, 5, f.variantStock(ctx))
}

func TestCreateOrderRejectsOutOfStock(t *testing.T) {
	f := newFixture()
	f.seedStore(1, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	_, err := f.orderSvc.CreateOrder(ctx, createOrderReq())
	require.Error(t, err)
	assert.Equal(t, MsgOutOfStock, err.Error())

	_, err = f.orders.Get(ctx, "Q20250310ORD1")
	require.Error(t, err)
	assert.Equal(t, 1, f.variantStock(ctx))
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)

	_, err := f.orderSvc.CreateOrder(context.Background(), createOrderReq())
	require.Error(t, err)
	assert.Equal(t, MsgNoProductInCart, err.Error())
}

func TestCreateOrderAppliesCouponAndCommits(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(2)
	seedCoupon(t, f, domain.Coupon{CouponName: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: 10})
	ctx := context.Background()

	req := createOrderReq()
	req.CouponCode = "SAVE10"
	res, err := f.orderSvc.CreateOrder(ctx, req)
	require.NoError(t, err)

	order, err := f.orders.Get(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, order.PriceDetails.DiscountPrice)
	assert.Equal(t, 208.0, order.PriceDetails.TotalPrice)

	coupon, err := f.coupons.Get(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, []string{res.OrderID}, coupon.RedeemedOrders)
	assert.Equal(t, []string{"C1"}, coupon.UsedBy)
}

func TestCreateOrderPaymentURLFailureDoesNotPersist(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(2)
	f.gateway.fail = true
	ctx := context.Background()

	_, err := f.orderSvc.CreateOrder(ctx, createOrderReq())
	require.Error(t, err)
	assert.Equal(t, MsgPaymentURLFailed, err.Error())

	_, err = f.orders.Get(ctx, "Q20250310ORD1")
	require.Error(t, err)
}

func TestUpdateStatusTerminalGuard(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	res, err := f.orderSvc.CreateOrder(ctx, createOrderReq())
	require.NoError(t, err)

	require.NoError(t, f.orderSvc.UpdateStatus(ctx, res.OrderID, &StatusPatch{Status: domain.OrderAccepted}))
	require.NoError(t, f.orderSvc.UpdateStatus(ctx, res.OrderID, &StatusPatch{Status: domain.OrderDelivered}))

	err = f.orderSvc.UpdateStatus(ctx, res.OrderID, &StatusPatch{Status: domain.OrderAccepted})
	require.Error(t, err)
	assert.IsType(t, ErrConflict(""), err)
}

func TestReturnFlowWithReattempt(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	res, err := f.orderSvc.CreateOrder(ctx, createOrderReq())
	require.NoError(t, err)
	require.NoError(t, f.orderSvc.UpdateStatus(ctx, res.OrderID, &StatusPatch{Status: domain.OrderDelivered}))

	require.NoError(t, f.orderSvc.FileReturn(ctx, res.OrderID, &ReturnRequest{
		ReturnReason:   "damaged packaging",
		OrderReattempt: true,
	}))

	msg, err := f.orderSvc.ResolveReturn(ctx, res.OrderID, true)
	require.NoError(t, err)
	assert.Equal(t, MsgReturnAccepted, msg)

	// The reattempt order took the next sequence number.
	reattempt, err := f.orders.Get(ctx, "Q20250310ORD2")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderNew, reattempt.Status)
	assert.Equal(t, res.OrderID[:1]+"20250310ORD2", reattempt.ID)
}

func TestListOrdersPagination(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.seedCart(1)
		_, err := f.orderSvc.CreateOrder(ctx, createOrderReq())
		require.NoError(t, err)
		f.now = f.now.Add(time.Minute)
	}

	page, err := f.orderSvc.ListOrders(ctx, RoleCustomer, "C1", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.True(t, page.HasNextPage)

	page, err = f.orderSvc.ListOrders(ctx, RoleCustomer, "C1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)
	assert.False(t, page.HasNextPage)
}

func TestTransactionsUsesCountCache(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(2)
	f.orderSvc.Counts = cache.New[string, int64](time.Minute)
	ctx := context.Background()

	_, err := f.orderSvc.CreateOrder(ctx, createOrderReq())
	require.NoError(t, err)

	res, err := f.orderSvc.Transactions(ctx, "SA1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalCount)

	// Another order lands; the cached total is allowed to lag.
	f.seedCart(1)
	_, err = f.orderSvc.CreateOrder(ctx, createOrderReq())
	require.NoError(t, err)

	res, err = f.orderSvc.Transactions(ctx, "SA1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalCount)
}

func TestRefundRecordsDetails(t *testing.T) {
	f := newFixture()
	f.seedStore(5, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	res, err := f.orderSvc.CreateOrder(ctx, createOrderReq())
	require.NoError(t, err)

	_, err = f.orderSvc.Refund(ctx, res.OrderID)
	require.Error(t, err, "refund before payment completion must fail")

	order, err := f.orders.Get(ctx, res.OrderID)
	require.NoError(t, err)
	order.PaymentDetails.PaymentStatus = domain.PaymentCompleted
	require.NoError(t, f.orders.Replace(ctx, order))

	details, err := f.orderSvc.Refund(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "REF-"+res.OrderID, details.RefundID)
	assert.Equal(t, "PENDING", details.RefundStatus)

	// Re-running returns the stored record, no second gateway call.
	again, err := f.orderSvc.Refund(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, details.RefundID, again.RefundID)

	status, err := f.orderSvc.RefundStatus(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", status.RefundStatus)
}
