package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rooted-backend/internal/domain"
)

func createSubscriptionReq(weeks int) *CreateSubscriptionRequest {
	return &CreateSubscriptionRequest{
		Phone:         "9111111111",
		CustomerID:    "C1",
		AddressID:     "A1",
		StoreID:       "ST1",
		FirstDelivery: "2025-03-10",
		WeeksCount:    weeks,
		DeliveryTime:  "08:00",
	}
}

func TestWeeklyDates(t *testing.T) {
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	dates := WeeklyDates(monday, int(time.Monday), 3)
	assert.Equal(t, []string{"2025-03-10", "2025-03-17", "2025-03-24"}, dates)

	// Starting mid-week walks forward to the first matching weekday.
	wednesday := monday.AddDate(0, 0, 2)
	dates = WeeklyDates(wednesday, int(time.Monday), 2)
	assert.Equal(t, []string{"2025-03-17", "2025-03-24"}, dates)

	for _, d := range dates {
		parsed, err := time.Parse("2006-01-02", d)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, parsed.Weekday())
	}
}

func TestCreateSubscription(t *testing.T) {
	f := newFixture()
	f.seedStore(10, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	res, err := f.subSvc.Create(ctx, createSubscriptionReq(3))
	require.NoError(t, err)
	assert.NotEmpty(t, res.SubscriptionID)
	assert.Equal(t, "https://pay.example/checkout", res.PaymentURL)

	sub, err := f.subs.Get(ctx, res.SubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, int(time.Monday), sub.Day)
	assert.Equal(t, []string{"2025-03-10", "2025-03-17", "2025-03-24"}, sub.PendingOrderDates)
	assert.Empty(t, sub.SubscriptionOrderDates)
	assert.Equal(t, 200.0, sub.PriceDetails.SubTotal)
	// 3 weeks of 200 plus the 20 delivery charge.
	assert.Equal(t, 620.0, sub.PriceDetails.TotalPrice)
}

func TestCreateSubscriptionRejectsOutOfStock(t *testing.T) {
	f := newFixture()
	f.seedStore(1, 100, 0)
	f.seedCart(2)

	_, err := f.subSvc.Create(context.Background(), createSubscriptionReq(2))
	require.Error(t, err)
	assert.Equal(t, MsgOutOfStock, err.Error())
}

func TestRenewExtendsPendingDates(t *testing.T) {
	f := newFixture()
	f.seedStore(10, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	res, err := f.subSvc.Create(ctx, createSubscriptionReq(2))
	require.NoError(t, err)

	renewed, err := f.subSvc.Renew(ctx, res.SubscriptionID, 2)
	require.NoError(t, err)
	assert.Equal(t, res.SubscriptionID, renewed.SubscriptionID)

	sub, err := f.subs.Get(ctx, res.SubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, 4, sub.WeeksCount)
	assert.Equal(t, []string{"2025-03-10", "2025-03-17", "2025-03-24", "2025-03-31"}, sub.PendingOrderDates)
	assert.Equal(t, 200.0, sub.PriceDetails.SubTotal)
	// original bulk 420 (2 weeks of 200 plus delivery 20) plus 2 renewed weeks
	assert.Equal(t, 820.0, sub.PriceDetails.TotalPrice)
}

func TestRescheduleMovesDateAndReplacesOrder(t *testing.T) {
	f := newFixture()
	f.seedStore(10, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	res, err := f.subSvc.Create(ctx, createSubscriptionReq(2))
	require.NoError(t, err)

	// Complete the batch so the pending dates become concrete orders.
	err = f.webhookSvc.Process(ctx, &WebhookPayload{Payload: webhookEvent(res.SubscriptionID, "COMPLETED", "T1", domain.OrderTypeSubscription)})
	require.NoError(t, err)

	newDate, err := f.subSvc.Reschedule(ctx, res.SubscriptionID, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-24", newDate)

	sub, err := f.subs.Get(ctx, res.SubscriptionID)
	require.NoError(t, err)
	assert.Contains(t, sub.CanceledOrderDates, "2025-03-10")
	assert.NotContains(t, sub.SubscriptionOrderDates, "2025-03-10")
	assert.Contains(t, sub.SubscriptionOrderDates, "2025-03-24")

	// The old concrete order is cancelled, the replacement exists.
	oldOrder, err := f.orders.FindBySubscriptionDate(ctx, sub.ID, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", string(oldOrder.Status))
	replacement, err := f.orders.FindBySubscriptionDate(ctx, sub.ID, "2025-03-24")
	require.NoError(t, err)
	assert.Equal(t, "New", string(replacement.Status))
}

func TestListTagsActiveSubscriptions(t *testing.T) {
	f := newFixture()
	f.seedStore(10, 100, 0)
	f.seedCart(2)
	ctx := context.Background()

	res, err := f.subSvc.Create(ctx, createSubscriptionReq(2))
	require.NoError(t, err)

	views, err := f.subSvc.List(ctx, "9111111111")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, res.SubscriptionID, views[0].ID)
	assert.Equal(t, SubscriptionActive, views[0].SubscriptionStatus)

	// Push the clock past the last date with nothing pending.
	sub, err := f.subs.Get(ctx, res.SubscriptionID)
	require.NoError(t, err)
	sub.SubscriptionOrderDates = sub.PendingOrderDates
	sub.PendingOrderDates = nil
	require.NoError(t, f.subs.Replace(ctx, sub))
	f.now = f.now.AddDate(0, 2, 0)

	views, err = f.subSvc.List(ctx, "9111111111")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, SubscriptionInactive, views[0].SubscriptionStatus)
}
