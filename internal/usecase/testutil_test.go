package usecase

import (
	"context"
	"sync"
	"time"

	"rooted-backend/internal/cache"
	"rooted-backend/internal/docstore"
	"rooted-backend/internal/domain"
)

// fixture wires the full service graph over the in-memory store with a
// frozen clock and a stub gateway.
type fixture struct {
	carts     *docstore.MemoryCartRepo
	catalog   *docstore.MemoryCatalogRepo
	inventory *docstore.MemoryInventoryRepo
	coupons   *docstore.MemoryCouponRepo
	orders    *docstore.MemoryOrderRepo
	subs      *docstore.MemorySubscriptionRepo
	counters  *docstore.MemoryCounterRepo
	stores    *docstore.MemoryStoreRepo
	customers *docstore.MemoryCustomerRepo
	ledger    *docstore.MemoryCallbackLedger

	gateway *fakeGateway
	notify  *fakeNotifier

	pricing      *PricingService
	couponSvc    *CouponService
	sequencer    *OrderSequencer
	inventorySvc *InventoryService
	orderSvc     *OrderService
	cartSvc      *CartService
	subSvc       *SubscriptionService
	webhookSvc   *WebhookService

	now time.Time
}

func newFixture() *fixture {
	f := &fixture{
		carts:     docstore.NewMemoryCartRepo(),
		catalog:   docstore.NewMemoryCatalogRepo(),
		inventory: docstore.NewMemoryInventoryRepo(),
		coupons:   docstore.NewMemoryCouponRepo(),
		orders:    docstore.NewMemoryOrderRepo(),
		subs:      docstore.NewMemorySubscriptionRepo(),
		counters:  docstore.NewMemoryCounterRepo(),
		stores:    docstore.NewMemoryStoreRepo(),
		customers: docstore.NewMemoryCustomerRepo(),
		ledger:    docstore.NewMemoryCallbackLedger(),
		gateway:   &fakeGateway{url: "https://pay.example/checkout"},
		notify:    &fakeNotifier{},
		now:       time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC), // a Monday
	}
	clock := func() time.Time { return f.now }

	f.pricing = &PricingService{Carts: f.carts, Catalog: f.catalog, Inventory: f.inventory}
	f.couponSvc = &CouponService{Coupons: f.coupons, Now: clock}
	f.sequencer = &OrderSequencer{Counters: f.counters, Now: clock}
	f.inventorySvc = &InventoryService{Inventory: f.inventory}
	f.orderSvc = &OrderService{
		Orders:    f.orders,
		Stores:    f.stores,
		Customers: f.customers,
		Carts:     f.carts,
		Pricing:   f.pricing,
		Coupons:   f.couponSvc,
		Sequencer: f.sequencer,
		Gateway:   f.gateway,
		Counts:    cache.New[string, int64](time.Minute),
		Now:       clock,
	}
	f.cartSvc = &CartService{Carts: f.carts, Inventory: f.inventory, Pricing: f.pricing}
	f.subSvc = &SubscriptionService{
		Subs:      f.subs,
		Orders:    f.orders,
		Stores:    f.stores,
		Customers: f.customers,
		Pricing:   f.pricing,
		Coupons:   f.couponSvc,
		OrderSvc:  f.orderSvc,
		Gateway:   f.gateway,
		Now:       clock,
	}
	f.webhookSvc = &WebhookService{
		Orders:    f.orders,
		Subs:      f.subs,
		Carts:     f.cartSvc,
		Inventory: f.inventorySvc,
		OrderSvc:  f.orderSvc,
		Ledger:    f.ledger,
		Notify:    f.notify,
		AuthHash:  "testhash",
		Now:       clock,
	}
	return f
}

// seedStore creates a store, a customer, a catalog product with one
// variant, and the store's inventory for that variant.
func (f *fixture) seedStore(stock int, price, offerPrice float64) {
	f.stores.Put(&domain.Store{
		ID:               "ST1",
		StoreName:        "Fresh Corner",
		Phone:            "9000000000",
		StoreAddress:     "12 Market Road",
		DeliveryRange:    10,
		DeliveryCharges:  20,
		PackagingCharges: 5,
		PlatformCharges:  3,
		StoreAdminID:     "SA1",
	})
	f.customers.Put(&domain.Customer{
		ID:    "C1",
		Name:  "Asha",
		Phone: "9111111111",
		Addresses: []domain.Address{
			{ID: "A1", Label: "home", Origin: "44 Lake View"},
		},
	})
	f.catalog.Put(&domain.Product{
		ID:   "P1",
		Name: "Tomatoes",
		Variants: []domain.Variant{
			{ID: "V1", Name: "1 kg", Type: "weight", Value: "1", Metrics: "kg", Images: []string{"p1.jpg"}},
		},
	})
	f.inventory.Put(&domain.StoreInventory{
		ID:      "INV1",
		StoreID: "ST1",
		Products: []domain.InventoryProduct{
			{ProductID: "P1", Stock: stock, Variants: []domain.InventoryVariant{
				{VariantID: "V1", Stock: stock, Price: price, OfferPrice: offerPrice},
			}},
		},
	})
}

func (f *fixture) seedCart(quantity int) {
	_ = f.carts.Create(context.Background(), &domain.Cart{
		ID:       "CART1",
		Phone:    "9111111111",
		Products: []domain.CartLine{{ProductID: "P1", VariantID: "V1", Quantity: quantity}},
	})
}

func (f *fixture) variantStock(ctx context.Context) int {
	inv, err := f.inventory.GetByStore(ctx, "ST1")
	if err != nil {
		return -1
	}
	return inv.Products[0].Variants[0].Stock
}

type fakeGateway struct {
	mu       sync.Mutex
	url      string
	fail     bool
	payCalls []string
}

func (g *fakeGateway) CreatePaymentURL(_ context.Context, amount int64, merchantOrderID, tag string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return "", errGatewayDown
	}
	g.payCalls = append(g.payCalls, merchantOrderID)
	return g.url, nil
}

func (g *fakeGateway) Refund(_ context.Context, amount int64, merchantRefundID, merchantOrderID string) (string, string, error) {
	if g.fail {
		return "", "", errGatewayDown
	}
	return "REF-" + merchantOrderID, "PENDING", nil
}

func (g *fakeGateway) RefundStatus(_ context.Context, merchantRefundID string) (string, error) {
	if g.fail {
		return "", errGatewayDown
	}
	return "COMPLETED", nil
}

var errGatewayDown = ErrBadRequest("gateway down")

type fakeNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (n *fakeNotifier) Send(_ context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, phone+": "+message)
	return nil
}
