package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"rooted-backend/internal/domain"
)

// memColl is a revision-checked in-memory container. Documents are
// stored as deep copies so a caller mutating its own struct cannot leak
// changes into the store before Replace.
type memColl[T any] struct {
	mu     sync.RWMutex
	docs   map[string]*T
	id     func(*T) string
	rev    func(*T) int64
	setRev func(*T, int64)
}

func newMemColl[T any](id func(*T) string, rev func(*T) int64, setRev func(*T, int64)) *memColl[T] {
	return &memColl[T]{docs: make(map[string]*T), id: id, rev: rev, setRev: setRev}
}

func (c *memColl[T]) clone(doc *T) *T {
	b, _ := json.Marshal(doc)
	out := new(T)
	_ = json.Unmarshal(b, out)
	c.setRev(out, c.rev(doc))
	return out
}

func (c *memColl[T]) get(id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.clone(doc), nil
}

func (c *memColl[T]) create(doc *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[c.id(doc)]; ok {
		return ErrConflict
	}
	c.setRev(doc, 1)
	c.docs[c.id(doc)] = c.clone(doc)
	return nil
}

func (c *memColl[T]) replace(doc *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.docs[c.id(doc)]
	if !ok {
		return ErrNotFound
	}
	if c.rev(cur) != c.rev(doc) {
		return ErrConflict
	}
	c.setRev(doc, c.rev(doc)+1)
	c.docs[c.id(doc)] = c.clone(doc)
	return nil
}

// put is an unconditional upsert, used for seeding only.
func (c *memColl[T]) put(doc *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rev(doc) == 0 {
		c.setRev(doc, 1)
	}
	c.docs[c.id(doc)] = c.clone(doc)
}

func (c *memColl[T]) delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	return nil
}

func (c *memColl[T]) find(pred func(*T) bool) []*T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*T
	for _, doc := range c.docs {
		if pred(doc) {
			out = append(out, c.clone(doc))
		}
	}
	return out
}

type MemoryCartRepo struct {
	coll *memColl[domain.Cart]
}

func NewMemoryCartRepo() *MemoryCartRepo {
	return &MemoryCartRepo{coll: newMemColl(
		func(c *domain.Cart) string { return c.ID },
		func(c *domain.Cart) int64 { return c.Rev },
		func(c *domain.Cart, r int64) { c.Rev = r },
	)}
}

func (r *MemoryCartRepo) GetByPhone(_ context.Context, phone string) (*domain.Cart, error) {
	carts := r.coll.find(func(c *domain.Cart) bool { return c.Phone == phone })
	if len(carts) == 0 {
		return nil, ErrNotFound
	}
	return carts[0], nil
}

func (r *MemoryCartRepo) Create(_ context.Context, c *domain.Cart) error  { return r.coll.create(c) }
func (r *MemoryCartRepo) Replace(_ context.Context, c *domain.Cart) error { return r.coll.replace(c) }

type MemoryCatalogRepo struct {
	coll *memColl[domain.Product]
}

func NewMemoryCatalogRepo() *MemoryCatalogRepo {
	return &MemoryCatalogRepo{coll: newMemColl(
		func(p *domain.Product) string { return p.ID },
		func(*domain.Product) int64 { return 1 },
		func(*domain.Product, int64) {},
	)}
}

func (r *MemoryCatalogRepo) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	return r.coll.get(id)
}

func (r *MemoryCatalogRepo) Put(p *domain.Product) { r.coll.put(p) }

type MemoryInventoryRepo struct {
	coll *memColl[domain.StoreInventory]
}

func NewMemoryInventoryRepo() *MemoryInventoryRepo {
	return &MemoryInventoryRepo{coll: newMemColl(
		func(si *domain.StoreInventory) string { return si.ID },
		func(si *domain.StoreInventory) int64 { return si.Rev },
		func(si *domain.StoreInventory, r int64) { si.Rev = r },
	)}
}

func (r *MemoryInventoryRepo) GetByStore(_ context.Context, storeID string) (*domain.StoreInventory, error) {
	docs := r.coll.find(func(si *domain.StoreInventory) bool { return si.StoreID == storeID })
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (r *MemoryInventoryRepo) Replace(_ context.Context, si *domain.StoreInventory) error {
	return r.coll.replace(si)
}

func (r *MemoryInventoryRepo) Put(si *domain.StoreInventory) { r.coll.put(si) }

type MemoryCouponRepo struct {
	coll *memColl[domain.Coupon]
}

func NewMemoryCouponRepo() *MemoryCouponRepo {
	return &MemoryCouponRepo{coll: newMemColl(
		func(c *domain.Coupon) string { return c.ID },
		func(c *domain.Coupon) int64 { return c.Rev },
		func(c *domain.Coupon, r int64) { c.Rev = r },
	)}
}

func (r *MemoryCouponRepo) FindByName(_ context.Context, name string) (*domain.Coupon, error) {
	docs := r.coll.find(func(c *domain.Coupon) bool {
		return strings.EqualFold(c.CouponName, name)
	})
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (r *MemoryCouponRepo) Get(_ context.Context, id string) (*domain.Coupon, error) {
	return r.coll.get(id)
}

func (r *MemoryCouponRepo) Create(_ context.Context, c *domain.Coupon) error {
	return r.coll.create(c)
}

func (r *MemoryCouponRepo) Replace(_ context.Context, c *domain.Coupon) error {
	return r.coll.replace(c)
}

func (r *MemoryCouponRepo) Delete(_ context.Context, id string) error { return r.coll.delete(id) }

func (r *MemoryCouponRepo) List(_ context.Context) ([]domain.Coupon, error) {
	docs := r.coll.find(func(*domain.Coupon) bool { return true })
	out := make([]domain.Coupon, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CouponName < out[j].CouponName })
	return out, nil
}

type MemoryOrderRepo struct {
	coll *memColl[domain.Order]
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{coll: newMemColl(
		func(o *domain.Order) string { return o.ID },
		func(o *domain.Order) int64 { return o.Rev },
		func(o *domain.Order, r int64) { o.Rev = r },
	)}
}

func (r *MemoryOrderRepo) Get(_ context.Context, id string) (*domain.Order, error) {
	return r.coll.get(id)
}

func (r *MemoryOrderRepo) Create(_ context.Context, o *domain.Order) error  { return r.coll.create(o) }
func (r *MemoryOrderRepo) Replace(_ context.Context, o *domain.Order) error { return r.coll.replace(o) }

func (r *MemoryOrderRepo) listWhere(pred func(*domain.Order) bool, offset, limit int) []domain.Order {
	docs := r.coll.find(pred)
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedOn > docs[j].CreatedOn })
	out := make([]domain.Order, 0, limit)
	for i := offset; i < len(docs) && len(out) < limit; i++ {
		out = append(out, *docs[i])
	}
	return out
}

func (r *MemoryOrderRepo) ListByCustomer(_ context.Context, customerID string, offset, limit int) ([]domain.Order, error) {
	return r.listWhere(func(o *domain.Order) bool { return o.CustomerDetails.CustomerID == customerID }, offset, limit), nil
}

func (r *MemoryOrderRepo) ListByStore(_ context.Context, storeID string, offset, limit int) ([]domain.Order, error) {
	return r.listWhere(func(o *domain.Order) bool { return o.StoreDetails.ID == storeID }, offset, limit), nil
}

func (r *MemoryOrderRepo) ListByDriver(_ context.Context, driverID string, offset, limit int) ([]domain.Order, error) {
	return r.listWhere(func(o *domain.Order) bool {
		return o.DriverDetails != nil && o.DriverDetails.DriverID == driverID
	}, offset, limit), nil
}

func (r *MemoryOrderRepo) ListByStoreAdmin(_ context.Context, storeAdminID string, offset, limit int) ([]domain.Order, error) {
	return r.listWhere(func(o *domain.Order) bool { return o.StoreAdminID == storeAdminID }, offset, limit), nil
}

func (r *MemoryOrderRepo) CountByStoreAdmin(_ context.Context, storeAdminID string) (int64, error) {
	docs := r.coll.find(func(o *domain.Order) bool { return o.StoreAdminID == storeAdminID })
	return int64(len(docs)), nil
}

func (r *MemoryOrderRepo) FindBySubscription(_ context.Context, subscriptionID, customerID string) ([]domain.Order, error) {
	docs := r.coll.find(func(o *domain.Order) bool {
		return o.SubscriptionID == subscriptionID && o.CustomerDetails.CustomerID == customerID
	})
	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d)
	}
	return out, nil
}

func (r *MemoryOrderRepo) FindBySubscriptionDate(_ context.Context, subscriptionID, date string) (*domain.Order, error) {
	docs := r.coll.find(func(o *domain.Order) bool {
		return o.SubscriptionID == subscriptionID && strings.HasPrefix(o.ScheduledDelivery, date)
	})
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

type MemorySubscriptionRepo struct {
	coll *memColl[domain.Subscription]
}

func NewMemorySubscriptionRepo() *MemorySubscriptionRepo {
	return &MemorySubscriptionRepo{coll: newMemColl(
		func(s *domain.Subscription) string { return s.ID },
		func(s *domain.Subscription) int64 { return s.Rev },
		func(s *domain.Subscription, r int64) { s.Rev = r },
	)}
}

func (r *MemorySubscriptionRepo) Get(_ context.Context, id string) (*domain.Subscription, error) {
	return r.coll.get(id)
}

func (r *MemorySubscriptionRepo) Create(_ context.Context, s *domain.Subscription) error {
	return r.coll.create(s)
}

func (r *MemorySubscriptionRepo) Replace(_ context.Context, s *domain.Subscription) error {
	return r.coll.replace(s)
}

func (r *MemorySubscriptionRepo) ListByPhone(_ context.Context, phone string) ([]domain.Subscription, error) {
	docs := r.coll.find(func(s *domain.Subscription) bool { return s.Phone == phone })
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedDate > docs[j].CreatedDate })
	out := make([]domain.Subscription, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d)
	}
	return out, nil
}

func (r *MemorySubscriptionRepo) ListUpcoming(_ context.Context, from, to string) ([]domain.Subscription, error) {
	docs := r.coll.find(func(s *domain.Subscription) bool {
		for _, d := range s.SubscriptionOrderDates {
			if d >= from && d <= to {
				return true
			}
		}
		return false
	})
	out := make([]domain.Subscription, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d)
	}
	return out, nil
}

type MemoryCounterRepo struct {
	coll *memColl[domain.OrderCounter]
}

func NewMemoryCounterRepo() *MemoryCounterRepo {
	return &MemoryCounterRepo{coll: newMemColl(
		func(c *domain.OrderCounter) string { return c.ID },
		func(c *domain.OrderCounter) int64 { return c.Rev },
		func(c *domain.OrderCounter, r int64) { c.Rev = r },
	)}
}

func (r *MemoryCounterRepo) Get(_ context.Context, id string) (*domain.OrderCounter, error) {
	return r.coll.get(id)
}

func (r *MemoryCounterRepo) Create(_ context.Context, c *domain.OrderCounter) error {
	return r.coll.create(c)
}

func (r *MemoryCounterRepo) Replace(_ context.Context, c *domain.OrderCounter) error {
	return r.coll.replace(c)
}

type MemoryStoreRepo struct {
	coll *memColl[domain.Store]
}

func NewMemoryStoreRepo() *MemoryStoreRepo {
	return &MemoryStoreRepo{coll: newMemColl(
		func(s *domain.Store) string { return s.ID },
		func(*domain.Store) int64 { return 1 },
		func(*domain.Store, int64) {},
	)}
}

func (r *MemoryStoreRepo) Get(_ context.Context, id string) (*domain.Store, error) {
	return r.coll.get(id)
}

func (r *MemoryStoreRepo) Put(s *domain.Store) { r.coll.put(s) }

type MemoryCustomerRepo struct {
	coll *memColl[domain.Customer]
}

func NewMemoryCustomerRepo() *MemoryCustomerRepo {
	return &MemoryCustomerRepo{coll: newMemColl(
		func(c *domain.Customer) string { return c.ID },
		func(*domain.Customer) int64 { return 1 },
		func(*domain.Customer, int64) {},
	)}
}

func (r *MemoryCustomerRepo) Get(_ context.Context, id string) (*domain.Customer, error) {
	return r.coll.get(id)
}

func (r *MemoryCustomerRepo) Put(c *domain.Customer) { r.coll.put(c) }

type MemoryCallbackLedger struct {
	coll *memColl[domain.ProcessedCallback]
}

func NewMemoryCallbackLedger() *MemoryCallbackLedger {
	return &MemoryCallbackLedger{coll: newMemColl(
		func(c *domain.ProcessedCallback) string { return c.ID },
		func(*domain.ProcessedCallback) int64 { return 1 },
		func(*domain.ProcessedCallback, int64) {},
	)}
}

func (r *MemoryCallbackLedger) Create(_ context.Context, c *domain.ProcessedCallback) error {
	return r.coll.create(c)
}
