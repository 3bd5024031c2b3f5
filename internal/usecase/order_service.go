package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rooted-backend/internal/cache"
	"rooted-backend/internal/docstore"
	"rooted-backend/internal/domain"
)

type OrderRepo interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, o *domain.Order) error
	Replace(ctx context.Context, o *domain.Order) error
	ListByCustomer(ctx context.Context, customerID string, offset, limit int) ([]domain.Order, error)
	ListByStore(ctx context.Context, storeID string, offset, limit int) ([]domain.Order, error)
	ListByDriver(ctx context.Context, driverID string, offset, limit int) ([]domain.Order, error)
	ListByStoreAdmin(ctx context.Context, storeAdminID string, offset, limit int) ([]domain.Order, error)
	CountByStoreAdmin(ctx context.Context, storeAdminID string) (int64, error)
	FindBySubscription(ctx context.Context, subscriptionID, customerID string) ([]domain.Order, error)
	FindBySubscriptionDate(ctx context.Context, subscriptionID, date string) (*domain.Order, error)
}

type StoreRepo interface {
	Get(ctx context.Context, id string) (*domain.Store, error)
}

type CustomerRepo interface {
	Get(ctx context.Context, id string) (*domain.Customer, error)
}

// PaymentGateway is the outbound payment-provider surface. Amounts are in
// minor currency units.
type PaymentGateway interface {
	CreatePaymentURL(ctx context.Context, amount int64, merchantOrderID, tag string) (string, error)
	Refund(ctx context.Context, amount int64, merchantRefundID, merchantOrderID string) (refundID, state string, err error)
	RefundStatus(ctx context.Context, merchantRefundID string) (string, error)
}

// Notifier sends customer notifications. Sends are best effort; callers
// never block a response on them.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// DistanceQuoter resolves road distance in km between two address strings.
type DistanceQuoter interface {
	Distance(ctx context.Context, origin, destination string) (float64, error)
}

type CreateOrderRequest struct {
	Phone             string `json:"phone"`
	CustomerID        string `json:"customerId"`
	AddressID         string `json:"addressId"`
	StoreID           string `json:"storeId"`
	OrderType         string `json:"orderType"`
	CouponCode        string `json:"couponCode"`
	ScheduledDelivery string `json:"scheduledDelivery"`
	StoreAdminID      string `json:"storeAdminId"`
}

type CreateOrderResult struct {
	OrderID    string `json:"orderId"`
	PaymentURL string `json:"paymentUrl"`
}

// ChargesPreview is the orderCharges response: the priced cart plus the
// full charge breakdown the assembler would apply.
type ChargesPreview struct {
	Products     []domain.LineItem   `json:"products"`
	Coupon       *CouponResult       `json:"coupon,omitempty"`
	PriceDetails domain.PriceDetails `json:"priceDetails"`
}

// StatusPatch carries the only order fields external actors may change.
// Anything else on the order is system owned and never merged from a
// request body.
type StatusPatch struct {
	Status        domain.OrderStatus    `json:"status"`
	DriverDetails *domain.DriverDetails `json:"driverDetails,omitempty"`
	QRCodePath    string                `json:"qrCodePath,omitempty"`
}

type ReturnRequest struct {
	ReturnReason   string `json:"returnReason"`
	DamagedImage   string `json:"damagedImage,omitempty"`
	OrderReattempt bool   `json:"orderReattempt"`
}

type OrderPage struct {
	Orders      []domain.Order `json:"orders"`
	HasNextPage bool           `json:"hasNextPage"`
}

type TransactionsPage struct {
	Orders     []domain.Order `json:"orders"`
	TotalCount int64          `json:"totalCount"`
}

const (
	RoleCustomer   = "customer"
	RoleStore      = "store"
	RoleDriver     = "driver"
	RoleStoreAdmin = "storeadmin"
)

const (
	orderReplaceRetries = 3
	txnCountTTLKey      = "txncount:"
)

// OrderService is the order assembler plus the order-facing queries and
// mutations. Orders carry snapshots; nothing here writes back to the
// catalog or customer records.
type OrderService struct {
	Orders    OrderRepo
	Stores    StoreRepo
	Customers CustomerRepo
	Carts     CartRepo
	Pricing   *PricingService
	Coupons   *CouponService
	Sequencer *OrderSequencer
	Gateway   PaymentGateway
	Quoter    DistanceQuoter
	Counts    *cache.TTL[string, int64]
	Log       *logrus.Logger
	Now       func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateOrder runs the assembly sequence: price, sequence, coupon check,
// totals, payment URL, persist, then coupon commit. Nothing before the
// persist step leaves a trace if a later step fails, except that the
// reserved order id is simply discarded.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResult, error) {
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

	seq, err := s.Sequencer.NextOrderID(ctx)
	if err != nil {
		return nil, err
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = domain.OrderTypeQuick
	}
	orderID := orderType[:1] + seq

	var discount float64
	if req.CouponCode != "" {
		res, err := s.Coupons.Evaluate(ctx, req.CouponCode, priced.SubTotal, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if !res.OK {
			return nil, ErrBadRequest(res.Message)
		}
		discount = res.Discount
	}

	store, err := s.Stores.Get(ctx, req.StoreID)
	if err != nil {
		if err == docstore.ErrNotFound {
			return nil, ErrNotFound("store")
		}
		return nil, err
	}
	customer, address, err := s.customerSnapshot(ctx, req.CustomerID, req.AddressID)
	if err != nil {
		return nil, err
	}

	delivery, err := s.deliveryCharge(ctx, store, address.Origin)
	if err != nil {
		return nil, err
	}
	price := assemblePrice(priced.SubTotal, delivery, store.PackagingCharges, store.PlatformCharges, discount)

	order := &domain.Order{
		ID:                orderID,
		CustomerDetails:   *customer,
		ProductDetails:    priced.Products,
		StoreDetails:      store.Snapshot(),
		ScheduledDelivery: req.ScheduledDelivery,
		Status:            domain.OrderNew,
		PriceDetails:      price,
		CouponCode:        strings.ToUpper(req.CouponCode),
		OrderType:         orderType,
		CreatedOn:         s.now().UTC().Format(time.RFC3339),
		PaymentDetails:    domain.PaymentDetails{PaymentStatus: domain.PaymentPending, PaymentDetails: []domain.PaymentRecord{}},
		StoreAdminID:      store.StoreAdminID,
	}

	paymentURL, err := s.Gateway.CreatePaymentURL(ctx, toMinorUnits(price.TotalPrice), orderID, orderType)
	if err != nil {
		if s.Log != nil {
			s.Log.WithField("order", orderID).WithError(err).Error("payment url creation failed")
		}
		return nil, ErrBadRequest(MsgPaymentURLFailed)
	}

	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	if req.CouponCode != "" {
		if err := s.Coupons.Commit(ctx, req.CouponCode, req.CustomerID, orderID); err != nil && s.Log != nil {
			s.Log.WithField("order", orderID).WithError(err).Warn("coupon commit failed after order persist")
		}
	}
	return &CreateOrderResult{OrderID: orderID, PaymentURL: paymentURL}, nil
}

// PersistSubscriptionOrder materializes one concrete order for a paid
// subscription date. The batch is already priced and paid, so the order
// is written complete in one step.
func (s *OrderService) PersistSubscriptionOrder(ctx context.Context, sub *domain.Subscription, date string) (*domain.Order, error) {
	seq, err := s.Sequencer.NextOrderID(ctx)
	if err != nil {
		return nil, err
	}
	perWeek := sub.PriceDetails
	perWeek.DiscountPrice = 0
	perWeek.TotalPrice = perWeek.SubTotal
	order := &domain.Order{
		ID:                "S" + seq,
		CustomerDetails:   sub.CustomerDetails,
		ProductDetails:    sub.Products,
		StoreDetails:      sub.StoreDetails,
		SubscriptionID:    sub.ID,
		ScheduledDelivery: date + "T" + sub.DeliveryTime,
		Status:            domain.OrderNew,
		PriceDetails:      perWeek,
		CouponCode:        sub.CouponCode,
		OrderType:         domain.OrderTypeSubscription,
		CreatedOn:         s.now().UTC().Format(time.RFC3339),
		PaymentDetails:    domain.PaymentDetails{PaymentStatus: domain.PaymentCompleted, PaymentDetails: []domain.PaymentRecord{}},
		StoreAdminID:      sub.StoreAdminID,
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Charges prices the current cart and previews the full charge breakdown
// without creating anything. A rejected coupon comes back in the preview
// with a zero discount rather than failing the call.
func (s *OrderService) Charges(ctx context.Context, phone, storeID, customerID, couponCode, addressOrigin string, weeksCount int) (*ChargesPreview, error) {
	priced, err := s.Pricing.PriceCart(ctx, phone, storeID)
	if err != nil {
		return nil, err
	}
	if len(priced.Products) == 0 {
		return nil, ErrBadRequest(MsgNoProductInCart)
	}
	store, err := s.Stores.Get(ctx, storeID)
	if err != nil {
		if err == docstore.ErrNotFound {
			return nil, ErrNotFound("store")
		}
		return nil, err
	}

	out := &ChargesPreview{Products: priced.Products}
	subTotal := priced.SubTotal
	packaging, platform := store.PackagingCharges, store.PlatformCharges
	if weeksCount > 1 {
		// Subscription preview: the batch is one delivery per week with
		// a single bulk payment, no per-order packaging or platform fee.
		subTotal = decimal.NewFromFloat(subTotal).
			Mul(decimal.NewFromInt(int64(weeksCount))).Round(2).InexactFloat64()
		packaging, platform = 0, 0
	}

	var discount float64
	if couponCode != "" {
		res, err := s.Coupons.Evaluate(ctx, couponCode, subTotal, customerID)
		if err != nil {
			return nil, err
		}
		out.Coupon = res
		if res.OK {
			discount = res.Discount
		}
	}

	delivery, err := s.deliveryCharge(ctx, store, addressOrigin)
	if err != nil {
		return nil, err
	}
	out.PriceDetails = assemblePrice(subTotal, delivery, packaging, platform, discount)
	return out, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.Orders.Get(ctx, id)
	if err == docstore.ErrNotFound {
		return nil, ErrNotFound("order")
	}
	return order, err
}

// UpdateStatus applies an allow-listed patch to an order. Terminal
// orders refuse further transitions.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, patch *StatusPatch) error {
	var lastErr error
	for attempt := 0; attempt < orderReplaceRetries; attempt++ {
		order, err := s.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return ErrConflict("order is in a terminal state")
		}
		if patch.Status != "" {
			order.Status = patch.Status
		}
		if patch.DriverDetails != nil {
			order.DriverDetails = patch.DriverDetails
		}
		if patch.QRCodePath != "" {
			order.QRCodePath = patch.QRCodePath
		}
		if err := s.Orders.Replace(ctx, order); err != nil {
			if err == docstore.ErrConflict {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

// FileReturn opens a return request on a delivered order.
func (s *OrderService) FileReturn(ctx context.Context, orderID string, req *ReturnRequest) error {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderDelivered {
		return ErrBadRequest("only delivered orders can be returned")
	}
	order.ReturnOrder = true
	order.ReturnCause = &domain.ReturnCause{
		IsApproved:   false,
		DamagedImage: req.DamagedImage,
		ReturnReason: req.ReturnReason,
	}
	order.OrderReattempt = req.OrderReattempt
	order.ReturnOn = s.now().UTC().Format(time.RFC3339)
	return s.Orders.Replace(ctx, order)
}

// ResolveReturn accepts or denies a filed return. Accepting a return
// that asked for a reattempt creates a fresh replacement order carrying
// the original's priced lines and settled payment.
func (s *OrderService) ResolveReturn(ctx context.Context, orderID string, approve bool) (string, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !order.ReturnOrder || order.ReturnCause == nil {
		return "", ErrBadRequest("no return request filed for this order")
	}
	if !approve {
		order.ReturnCause.IsApproved = false
		order.ReturnOrder = false
		if err := s.Orders.Replace(ctx, order); err != nil {
			return "", err
		}
		return MsgReturnDenied, nil
	}

	order.ReturnCause.IsApproved = true
	if err := s.Orders.Replace(ctx, order); err != nil {
		return "", err
	}
	if order.OrderReattempt {
		seq, err := s.Sequencer.NextOrderID(ctx)
		if err != nil {
			return "", err
		}
		reattempt := &domain.Order{
			ID:              order.OrderType[:1] + seq,
			CustomerDetails: order.CustomerDetails,
			ProductDetails:  order.ProductDetails,
			StoreDetails:    order.StoreDetails,
			Status:          domain.OrderNew,
			PriceDetails:    order.PriceDetails,
			OrderType:       order.OrderType,
			CreatedOn:       s.now().UTC().Format(time.RFC3339),
			PaymentDetails:  order.PaymentDetails,
			StoreAdminID:    order.StoreAdminID,
		}
		if err := s.Orders.Create(ctx, reattempt); err != nil {
			return "", err
		}
	}
	return MsgReturnAccepted, nil
}

// ListOrders pages a user's orders by role. It fetches one extra row to
// learn whether another page exists.
func (s *OrderService) ListOrders(ctx context.Context, role, userID string, page, limit int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var (
		orders []domain.Order
		err    error
	)
	switch strings.ToLower(role) {
	case RoleCustomer:
		orders, err = s.Orders.ListByCustomer(ctx, userID, offset, limit+1)
	case RoleStore:
		orders, err = s.Orders.ListByStore(ctx, userID, offset, limit+1)
	case RoleDriver:
		orders, err = s.Orders.ListByDriver(ctx, userID, offset, limit+1)
	case RoleStoreAdmin:
		orders, err = s.Orders.ListByStoreAdmin(ctx, userID, offset, limit+1)
	default:
		return nil, ErrBadRequest("unknown role")
	}
	if err != nil {
		return nil, err
	}
	hasNext := len(orders) > limit
	if hasNext {
		orders = orders[:limit]
	}
	return &OrderPage{Orders: orders, HasNextPage: hasNext}, nil
}

// Transactions lists a store admin's orders with a total count. The
// count is served from the TTL cache; a stale total for a short window
// is acceptable for pagination.
func (s *OrderService) Transactions(ctx context.Context, storeAdminID string, page, limit int) (*TransactionsPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	orders, err := s.Orders.ListByStoreAdmin(ctx, storeAdminID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	key := txnCountTTLKey + storeAdminID
	total, ok := s.Counts.Get(key)
	if !ok {
		total, err = s.Orders.CountByStoreAdmin(ctx, storeAdminID)
		if err != nil {
			return nil, err
		}
		s.Counts.Set(key, total)
	}
	return &TransactionsPage{Orders: orders, TotalCount: total}, nil
}

// Refund asks the gateway to refund an order's full amount and records
// the outcome on the order. Gateways reject refunds under one rupee, so
// the minor-unit amount is floored at 100.
func (s *OrderService) Refund(ctx context.Context, orderID string) (*domain.RefundDetails, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentDetails.PaymentStatus != domain.PaymentCompleted {
		return nil, ErrBadRequest("order payment is not completed")
	}
	if order.RefundDetails != nil {
		return order.RefundDetails, nil
	}

	amount := toMinorUnits(order.PriceDetails.TotalPrice)
	if amount < 100 {
		amount = 100
	}
	refundID := "R" + uuid.NewString()
	id, state, err := s.Gateway.Refund(ctx, amount, refundID, orderID)
	if err != nil {
		return nil, ErrBadRequest("refund request failed")
	}
	if id == "" {
		id = refundID
	}
	order.RefundDetails = &domain.RefundDetails{
		RefundID:     id,
		RefundStatus: state,
		RefundedOn:   s.now().UTC().Format(time.RFC3339),
	}
	if err := s.Orders.Replace(ctx, order); err != nil {
		return nil, err
	}
	return order.RefundDetails, nil
}

// RefundStatus re-queries the gateway for a previously issued refund and
// stores the fresh state.
func (s *OrderService) RefundStatus(ctx context.Context, orderID string) (*domain.RefundDetails, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.RefundDetails == nil {
		return nil, ErrNotFound("refund")
	}
	state, err := s.Gateway.RefundStatus(ctx, order.RefundDetails.RefundID)
	if err != nil {
		return nil, ErrBadRequest("refund status query failed")
	}
	if state != order.RefundDetails.RefundStatus {
		order.RefundDetails.RefundStatus = state
		if err := s.Orders.Replace(ctx, order); err != nil {
			return nil, err
		}
	}
	return order.RefundDetails, nil
}

func (s *OrderService) customerSnapshot(ctx context.Context, customerID, addressID string) (*domain.CustomerSnapshot, *domain.Address, error) {
	customer, err := s.Customers.Get(ctx, customerID)
	if err != nil {
		if err == docstore.ErrNotFound {
			return nil, nil, ErrNotFound("customer")
		}
		return nil, nil, err
	}
	var address *domain.Address
	for i := range customer.Addresses {
		if customer.Addresses[i].ID == addressID {
			address = &customer.Addresses[i]
			break
		}
	}
	if address == nil {
		if len(customer.Addresses) == 0 {
			return nil, nil, ErrBadRequest("customer has no delivery address")
		}
		address = &customer.Addresses[0]
	}
	return &domain.CustomerSnapshot{
		CustomerID: customer.ID,
		Name:       customer.Name,
		Phone:      customer.Phone,
		Address:    *address,
	}, address, nil
}

// deliveryCharge applies the store's flat delivery fee after checking
// range. An unavailable quoter falls back to the flat fee so delivery
// never blocks on the maps provider.
func (s *OrderService) deliveryCharge(ctx context.Context, store *domain.Store, origin string) (float64, error) {
	if s.Quoter == nil || origin == "" || store.Coordinates == "" {
		return store.DeliveryCharges, nil
	}
	distance, err := s.Quoter.Distance(ctx, store.Coordinates, origin)
	if err != nil {
		if s.Log != nil {
			s.Log.WithError(err).Warn("distance lookup failed, using flat delivery charge")
		}
		return store.DeliveryCharges, nil
	}
	if store.DeliveryRange > 0 && distance > store.DeliveryRange {
		return 0, ErrBadRequest("delivery address is outside the store's delivery range")
	}
	return store.DeliveryCharges, nil
}

func assemblePrice(subTotal, delivery, packaging, platform, discount float64) domain.PriceDetails {
	total := decimal.NewFromFloat(subTotal).
		Add(decimal.NewFromFloat(delivery)).
		Add(decimal.NewFromFloat(packaging)).
		Add(decimal.NewFromFloat(platform)).
		Sub(decimal.NewFromFloat(discount))
	if total.IsNegative() {
		total = decimal.Zero
	}
	return domain.PriceDetails{
		SubTotal:         subTotal,
		DeliveryCharges:  delivery,
		PackagingCharges: packaging,
		PlatformCharges:  platform,
		DiscountPrice:    discount,
		TotalPrice:       total.Round(2).InexactFloat64(),
	}
}

func toMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
