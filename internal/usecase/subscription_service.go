package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rooted-backend/internal/docstore"
	"rooted-backend/internal/domain"
)

type SubscriptionRepo interface {
	Get(ctx context.Context, id string) (*domain.Subscription, error)
	Create(ctx context.Context, s *domain.Subscription) error
	Replace(ctx context.Context, s *domain.Subscription) error
	ListByPhone(ctx context.Context, phone string) ([]domain.Subscription, error)
	ListUpcoming(ctx context.Context, from, to string) ([]domain.Subscription, error)
}

type CreateSubscriptionRequest struct {
	Phone         string `json:"phone"`
	CustomerID    string `json:"customerId"`
	AddressID     string `json:"addressId"`
	StoreID       string `json:"storeId"`
	FirstDelivery string `json:"firstDelivery"`
	WeeksCount    int    `json:"weeksCount"`
	DeliveryTime  string `json:"deliveryTime"`
	CouponCode    string `json:"couponCode"`
}

type CreateSubscriptionResult struct {
	SubscriptionID string `json:"subscriptionId"`
	PaymentURL     string `json:"paymentUrl"`
}

const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

// SubscriptionView decorates a subscription with its computed state for
// listings.
type SubscriptionView struct {
	domain.Subscription
	SubscriptionStatus string `json:"subscriptionStatus"`
}

const subscriptionDateLayout = "2006-01-02"

// SubscriptionService plans weekly delivery batches. A batch is priced
// once at creation and paid up front; the webhook reconciler later turns
// its pending dates into concrete orders.
type SubscriptionService struct {
	Subs      SubscriptionRepo
	Orders    OrderRepo
	Stores    StoreRepo
	Customers CustomerRepo
	Pricing   *PricingService
	Coupons   *CouponService
	OrderSvc  *OrderService
	Gateway   PaymentGateway
	Log       *logrus.Logger
	Now       func() time.Time
}

func (s *SubscriptionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create plans a new subscription batch: one delivery per week for
// weeksCount weeks, each on the weekday of the first delivery instant.
// All generated dates start pending; they move to fulfilled only when
// the batch payment completes and the concrete orders exist.
func (s *SubscriptionService) Create(ctx context.Context, req *CreateSubscriptionRequest) (*CreateSubscriptionResult, error) {
	if req.WeeksCount < 1 {
		return nil, ErrBadRequest("weeksCount must be at least 1")
	}
	first, err := time.Parse(subscriptionDateLayout, req.FirstDelivery)
	if err != nil {
		if first, err = time.Parse(time.RFC3339, req.FirstDelivery); err != nil {
			return nil, ErrBadRequest("firstDelivery must be an ISO date")
		}
	}

	priced, err := s.Pricing.PriceCart(ctx, req.Phone, req.StoreID)
	if err != nil {
		return nil, err
	}
	if len(priced.Products) == 0 {
		return nil, ErrBadRequest(MsgNoProductInCart)
	}
	if priced.HasOutOfStock() {
		return nil, ErrBadRequest(MsgOutOfStock)
	}

	store, err := s.Stores.Get(ctx, req.StoreID)
	if err != nil {
		if err == docstore.ErrNotFound {
			return nil, ErrNotFound("store")
		}
		return nil, err
	}
	snapshot, _, err := s.OrderSvc.customerSnapshot(ctx, req.CustomerID, req.AddressID)
	if err != nil {
		return nil, err
	}

	day := int(first.Weekday())
	dates := WeeklyDates(first, day, req.WeeksCount)

	bulkSubTotal := decimal.NewFromFloat(priced.SubTotal).
		Mul(decimal.NewFromInt(int64(req.WeeksCount))).Round(2).InexactFloat64()
	var discount float64
	if req.CouponCode != "" {
		res, err := s.Coupons.Evaluate(ctx, req.CouponCode, bulkSubTotal, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if !res.OK {
			return nil, ErrBadRequest(res.Message)
		}
		discount = res.Discount
	}
	bulk := assemblePrice(bulkSubTotal, store.DeliveryCharges, 0, 0, discount)
	// Per-week subtotal is kept alongside the bulk total so materialized
	// orders can carry their own price.
	price := bulk
	price.SubTotal = priced.SubTotal

	sub := &domain.Subscription{
		ID:                     uuid.NewString(),
		Phone:                  req.Phone,
		Products:               priced.Products,
		StoreDetails:           store.Snapshot(),
		CustomerDetails:        *snapshot,
		SubscriptionOrderDates: []string{},
		PendingOrderDates:      dates,
		CanceledOrderDates:     []string{},
		Day:                    day,
		WeeksCount:             req.WeeksCount,
		DeliveryTime:           req.DeliveryTime,
		Payments:               []domain.SubscriptionPayment{},
		CouponCode:             strings.ToUpper(req.CouponCode),
		PriceDetails:           price,
		StoreAdminID:           store.StoreAdminID,
		CreatedDate:            s.now().UTC().Format(time.RFC3339),
	}

	paymentURL, err := s.Gateway.CreatePaymentURL(ctx, toMinorUnits(bulk.TotalPrice), sub.ID, domain.OrderTypeSubscription)
	if err != nil {
		if s.Log != nil {
			s.Log.WithField("subscription", sub.ID).WithError(err).Error("payment url creation failed")
		}
		return nil, ErrBadRequest(MsgPaymentURLFailed)
	}
	if err := s.Subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	if req.CouponCode != "" {
		if err := s.Coupons.Commit(ctx, req.CouponCode, req.CustomerID, sub.ID); err != nil && s.Log != nil {
			s.Log.WithField("subscription", sub.ID).WithError(err).Warn("coupon commit failed after subscription persist")
		}
	}
	return &CreateSubscriptionResult{SubscriptionID: sub.ID, PaymentURL: paymentURL}, nil
}

// WeeklyDates generates count dates on the given weekday, starting at
// the first matching day on or after start, 7 days apart.
func WeeklyDates(start time.Time, day, count int) []string {
	d := start
	for int(d.Weekday()) != day {
		d = d.AddDate(0, 0, 1)
	}
	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, d.Format(subscriptionDateLayout))
		d = d.AddDate(0, 0, 7)
	}
	return dates
}

// Renew extends a subscription by weeks more deliveries continuing after
// its last known date, re-prices the lines at current inventory, and
// issues a payment URL for the incremental amount only.
func (s *SubscriptionService) Renew(ctx context.Context, subscriptionID string, weeks int) (*CreateSubscriptionResult, error) {
	if weeks < 1 {
		return nil, ErrBadRequest("weeks must be at least 1")
	}
	sub, err := s.get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(sub.Products))
	for _, p := range sub.Products {
		lines = append(lines, domain.CartLine{ProductID: p.ProductID, VariantID: p.VariantID, Quantity: p.Quantity})
	}
	priced, err := s.Pricing.Price(ctx, lines, sub.StoreDetails.ID)
	if err != nil {
		return nil, err
	}
	if priced.HasOutOfStock() {
		return nil, ErrBadRequest(MsgOutOfStock)
	}

	last := sub.LastScheduledDate()
	from := s.now()
	if last != "" {
		if t, perr := time.Parse(subscriptionDateLayout, last); perr == nil {
			from = t.AddDate(0, 0, 1)
		}
	}
	newDates := WeeklyDates(from, sub.Day, weeks)

	incremental := decimal.NewFromFloat(priced.SubTotal).
		Mul(decimal.NewFromInt(int64(weeks))).Round(2).InexactFloat64()

	sub.Products = priced.Products
	sub.PendingOrderDates = append(sub.PendingOrderDates, newDates...)
	sub.WeeksCount += weeks
	sub.PriceDetails.SubTotal = priced.SubTotal
	sub.PriceDetails.TotalPrice = decimal.NewFromFloat(sub.PriceDetails.TotalPrice).
		Add(decimal.NewFromFloat(incremental)).Round(2).InexactFloat64()
	paymentURL, err := s.Gateway.CreatePaymentURL(ctx, toMinorUnits(incremental), sub.ID, domain.OrderTypeSubscription)
	if err != nil {
		return nil, ErrBadRequest(MsgPaymentURLFailed)
	}
	if err := s.Subs.Replace(ctx, sub); err != nil {
		return nil, err
	}
	return &CreateSubscriptionResult{SubscriptionID: sub.ID, PaymentURL: paymentURL}, nil
}

// Reschedule moves one fulfilled delivery date to the canceled set,
// cancels its concrete order, and materializes a replacement order 7
// days after the subscription's last scheduled date.
func (s *SubscriptionService) Reschedule(ctx context.Context, subscriptionID, oldDate string) (string, error) {
	sub, err := s.get(ctx, subscriptionID)
	if err != nil {
		return "", err
	}
	if !sub.HasFulfilledDate(oldDate) {
		return "", ErrBadRequest("no scheduled delivery on that date")
	}

	newDate := oldDate
	if last := sub.LastScheduledDate(); last != "" {
		if t, perr := time.Parse(subscriptionDateLayout, last); perr == nil {
			newDate = t.AddDate(0, 0, 7).Format(subscriptionDateLayout)
		}
	}

	fulfilled := make([]string, 0, len(sub.SubscriptionOrderDates))
	for _, d := range sub.SubscriptionOrderDates {
		if d != oldDate {
			fulfilled = append(fulfilled, d)
		}
	}
	sub.SubscriptionOrderDates = append(fulfilled, newDate)
	sub.CanceledOrderDates = append(sub.CanceledOrderDates, oldDate)

	if old, ferr := s.Orders.FindBySubscriptionDate(ctx, sub.ID, oldDate); ferr == nil {
		old.Status = domain.OrderCancelled
		if rerr := s.Orders.Replace(ctx, old); rerr != nil && s.Log != nil {
			s.Log.WithField("order", old.ID).WithError(rerr).Warn("failed to cancel rescheduled order")
		}
	}
	if _, err := s.OrderSvc.PersistSubscriptionOrder(ctx, sub, newDate); err != nil {
		return "", err
	}
	if err := s.Subs.Replace(ctx, sub); err != nil {
		return "", err
	}
	return newDate, nil
}

// List returns a customer's subscriptions, newest first, each tagged
// active while deliveries remain pending or scheduled in the future.
func (s *SubscriptionService) List(ctx context.Context, phone string) ([]SubscriptionView, error) {
	subs, err := s.Subs.ListByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	today := s.now().UTC().Format(subscriptionDateLayout)
	out := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		status := SubscriptionInactive
		if len(sub.PendingOrderDates) > 0 || sub.LastScheduledDate() >= today {
			status = SubscriptionActive
		}
		out = append(out, SubscriptionView{Subscription: sub, SubscriptionStatus: status})
	}
	return out, nil
}

// OrdersBySubscription returns the concrete orders materialized for one
// subscription, scoped to the owning customer.
func (s *SubscriptionService) OrdersBySubscription(ctx context.Context, subscriptionID, customerID string) ([]domain.Order, error) {
	return s.Orders.FindBySubscription(ctx, subscriptionID, customerID)
}

// Upcoming lists subscriptions with a delivery scheduled within the next
// n days.
func (s *SubscriptionService) Upcoming(ctx context.Context, days int) ([]domain.Subscription, error) {
	if days < 1 {
		days = 1
	}
	from := s.now().UTC().Format(subscriptionDateLayout)
	to := s.now().UTC().AddDate(0, 0, days).Format(subscriptionDateLayout)
	return s.Subs.ListUpcoming(ctx, from, to)
}

func (s *SubscriptionService) get(ctx context.Context, id string) (*domain.Subscription, error) {
	sub, err := s.Subs.Get(ctx, id)
	if err == docstore.ErrNotFound {
		return nil, ErrNotFound("subscription")
	}
	return sub, err
}
