package docstore

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rooted-backend/internal/domain"
)

// Mongo owns the database handle and hands out container-scoped repos.
// Consistency relies on per-document atomicity only: replaces filter on
// the stored rev, so a lost race surfaces as ErrConflict instead of a
// silent overwrite.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect document store")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping document store")
	}
	return &Mongo{db: client.Database(database)}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.db.Client().Disconnect(ctx)
}

func (m *Mongo) container(name string) *mongo.Collection {
	return m.db.Collection(name)
}

func readByID[T any](ctx context.Context, c *mongo.Collection, id string) (*T, error) {
	out := new(T)
	err := c.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s/%s", c.Name(), id)
	}
	return out, nil
}

func readOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M) (*T, error) {
	out := new(T)
	err := c.FindOne(ctx, filter).Decode(out)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", c.Name())
	}
	return out, nil
}

func readMany[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", c.Name())
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", c.Name())
	}
	return out, nil
}

func createDoc(ctx context.Context, c *mongo.Collection, id string, doc any) error {
	_, err := c.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	if err != nil {
		return errors.Wrapf(err, "create %s/%s", c.Name(), id)
	}
	return nil
}

// replaceDoc is the conditional whole-document replace. rev must be the
// revision the caller read; the stored document keeps rev+1.
func replaceDoc(ctx context.Context, c *mongo.Collection, id string, rev int64, doc any) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id, "rev": rev}, doc)
	if err != nil {
		return errors.Wrapf(err, "replace %s/%s", c.Name(), id)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

type MongoCartRepo struct{ c *mongo.Collection }

func (m *Mongo) Carts() *MongoCartRepo {
	return &MongoCartRepo{c: m.container(ContainerCartItems)}
}

func (r *MongoCartRepo) GetByPhone(ctx context.Context, phone string) (*domain.Cart, error) {
	return readOne[domain.Cart](ctx, r.c, bson.M{"phone": phone})
}

func (r *MongoCartRepo) Create(ctx context.Context, cart *domain.Cart) error {
	cart.Rev = 1
	return createDoc(ctx, r.c, cart.ID, cart)
}

func (r *MongoCartRepo) Replace(ctx context.Context, cart *domain.Cart) error {
	prev := cart.Rev
	cart.Rev = prev + 1
	if err := replaceDoc(ctx, r.c, cart.ID, prev, cart); err != nil {
		cart.Rev = prev
		return err
	}
	return nil
}

type MongoCatalogRepo struct{ c *mongo.Collection }

func (m *Mongo) Catalog() *MongoCatalogRepo {
	return &MongoCatalogRepo{c: m.container(ContainerProducts)}
}

func (r *MongoCatalogRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return readByID[domain.Product](ctx, r.c, id)
}

type MongoInventoryRepo struct{ c *mongo.Collection }

func (m *Mongo) Inventory() *MongoInventoryRepo {
	return &MongoInventoryRepo{c: m.container(ContainerStoreProduct)}
}

func (r *MongoInventoryRepo) GetByStore(ctx context.Context, storeID string) (*domain.StoreInventory, error) {
	return readOne[domain.StoreInventory](ctx, r.c, bson.M{"storeId": storeID})
}

func (r *MongoInventoryRepo) Replace(ctx context.Context, si *domain.StoreInventory) error {
	prev := si.Rev
	si.Rev = prev + 1
	if err := replaceDoc(ctx, r.c, si.ID, prev, si); err != nil {
		si.Rev = prev
		return err
	}
	return nil
}

type MongoCouponRepo struct{ c *mongo.Collection }

func (m *Mongo) Coupons() *MongoCouponRepo {
	return &MongoCouponRepo{c: m.container(ContainerCouponCodes)}
}

func (r *MongoCouponRepo) FindByName(ctx context.Context, name string) (*domain.Coupon, error) {
	return readOne[domain.Coupon](ctx, r.c, bson.M{"couponName": strings.ToUpper(name)})
}

func (r *MongoCouponRepo) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	return readByID[domain.Coupon](ctx, r.c, id)
}

func (r *MongoCouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	c.Rev = 1
	return createDoc(ctx, r.c, c.ID, c)
}

func (r *MongoCouponRepo) Replace(ctx context.Context, c *domain.Coupon) error {
	prev := c.Rev
	c.Rev = prev + 1
	if err := replaceDoc(ctx, r.c, c.ID, prev, c); err != nil {
		c.Rev = prev
		return err
	}
	return nil
}

func (r *MongoCouponRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete %s/%s", r.c.Name(), id)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCouponRepo) List(ctx context.Context) ([]domain.Coupon, error) {
	return readMany[domain.Coupon](ctx, r.c, bson.M{},
		options.Find().SetSort(bson.D{{Key: "couponName", Value: 1}}))
}

type MongoOrderRepo struct{ c *mongo.Collection }

func (m *Mongo) Orders() *MongoOrderRepo {
	return &MongoOrderRepo{c: m.container(ContainerOrder)}
}

func (r *MongoOrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	return readByID[domain.Order](ctx, r.c, id)
}

func (r *MongoOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	o.Rev = 1
	return createDoc(ctx, r.c, o.ID, o)
}

func (r *MongoOrderRepo) Replace(ctx context.Context, o *domain.Order) error {
	prev := o.Rev
	o.Rev = prev + 1
	if err := replaceDoc(ctx, r.c, o.ID, prev, o); err != nil {
		o.Rev = prev
		return err
	}
	return nil
}

func (r *MongoOrderRepo) listWhere(ctx context.Context, filter bson.M, offset, limit int) ([]domain.Order, error) {
	return readMany[domain.Order](ctx, r.c, filter, options.Find().
		SetSort(bson.D{{Key: "createdOn", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)))
}

func (r *MongoOrderRepo) ListByCustomer(ctx context.Context, customerID string, offset, limit int) ([]domain.Order, error) {
	return r.listWhere(ctx, bson.M{"customerDetails.customerId": customerID}, offset, limit)
}

func (r *MongoOrderRepo) ListByStore(ctx context.Context, storeID string, offset, limit int) ([]domain.Order, error) {
	return r.listWhere(ctx, bson.M{"storeDetails.id": storeID}, offset, limit)
}

func (r *MongoOrderRepo) ListByDriver(ctx context.Context, driverID string, offset, limit int) ([]domain.Order, error) {
	return r.listWhere(ctx, bson.M{"driverDetails.driverId": driverID}, offset, limit)
}

func (r *MongoOrderRepo) ListByStoreAdmin(ctx context.Context, storeAdminID string, offset, limit int) ([]domain.Order, error) {
	return r.listWhere(ctx, bson.M{"storeAdminId": storeAdminID}, offset, limit)
}

func (r *MongoOrderRepo) CountByStoreAdmin(ctx context.Context, storeAdminID string) (int64, error) {
	n, err := r.c.CountDocuments(ctx, bson.M{"storeAdminId": storeAdminID})
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", r.c.Name())
	}
	return n, nil
}

func (r *MongoOrderRepo) FindBySubscription(ctx context.Context, subscriptionID, customerID string) ([]domain.Order, error) {
	return readMany[domain.Order](ctx, r.c, bson.M{
		"subscriptionId":             subscriptionID,
		"customerDetails.customerId": customerID,
	})
}

func (r *MongoOrderRepo) FindBySubscriptionDate(ctx context.Context, subscriptionID, date string) (*domain.Order, error) {
	return readOne[domain.Order](ctx, r.c, bson.M{
		"subscriptionId":    subscriptionID,
		"scheduledDelivery": bson.M{"$regex": "^" + date},
	})
}

type MongoSubscriptionRepo struct{ c *mongo.Collection }

func (m *Mongo) Subscriptions() *MongoSubscriptionRepo {
	return &MongoSubscriptionRepo{c: m.container(ContainerSubscriptions)}
}

func (r *MongoSubscriptionRepo) Get(ctx context.Context, id string) (*domain.Subscription, error) {
	return readByID[domain.Subscription](ctx, r.c, id)
}

func (r *MongoSubscriptionRepo) Create(ctx context.Context, s *domain.Subscription) error {
	s.Rev = 1
	return createDoc(ctx, r.c, s.ID, s)
}

func (r *MongoSubscriptionRepo) Replace(ctx context.Context, s *domain.Subscription) error {
	prev := s.Rev
	s.Rev = prev + 1
	if err := replaceDoc(ctx, r.c, s.ID, prev, s); err != nil {
		s.Rev = prev
		return err
	}
	return nil
}

func (r *MongoSubscriptionRepo) ListByPhone(ctx context.Context, phone string) ([]domain.Subscription, error) {
	return readMany[domain.Subscription](ctx, r.c, bson.M{"phone": phone},
		options.Find().SetSort(bson.D{{Key: "createdDate", Value: -1}}))
}

func (r *MongoSubscriptionRepo) ListUpcoming(ctx context.Context, from, to string) ([]domain.Subscription, error) {
	return readMany[domain.Subscription](ctx, r.c, bson.M{
		"subscriptionOrderDates": bson.M{"$elemMatch": bson.M{"$gte": from, "$lte": to}},
	})
}

type MongoCounterRepo struct{ c *mongo.Collection }

func (m *Mongo) Counters() *MongoCounterRepo {
	return &MongoCounterRepo{c: m.container(ContainerCounters)}
}

func (r *MongoCounterRepo) Get(ctx context.Context, id string) (*domain.OrderCounter, error) {
	return readByID[domain.OrderCounter](ctx, r.c, id)
}

func (r *MongoCounterRepo) Create(ctx context.Context, c *domain.OrderCounter) error {
	c.Rev = 1
	return createDoc(ctx, r.c, c.ID, c)
}

func (r *MongoCounterRepo) Replace(ctx context.Context, c *domain.OrderCounter) error {
	prev := c.Rev
	c.Rev = prev + 1
	if err := replaceDoc(ctx, r.c, c.ID, prev, c); err != nil {
		c.Rev = prev
		return err
	}
	return nil
}

type MongoStoreRepo struct{ c *mongo.Collection }

func (m *Mongo) Stores() *MongoStoreRepo {
	return &MongoStoreRepo{c: m.container(ContainerStoreDetails)}
}

func (r *MongoStoreRepo) Get(ctx context.Context, id string) (*domain.Store, error) {
	return readByID[domain.Store](ctx, r.c, id)
}

type MongoCustomerRepo struct{ c *mongo.Collection }

func (m *Mongo) Customers() *MongoCustomerRepo {
	return &MongoCustomerRepo{c: m.container(ContainerCustomers)}
}

func (r *MongoCustomerRepo) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return readByID[domain.Customer](ctx, r.c, id)
}

type MongoCallbackLedger struct{ c *mongo.Collection }

func (m *Mongo) Callbacks() *MongoCallbackLedger {
	return &MongoCallbackLedger{c: m.container(ContainerCallbacks)}
}

func (r *MongoCallbackLedger) Create(ctx context.Context, cb *domain.ProcessedCallback) error {
	return createDoc(ctx, r.c, cb.ID, cb)
}
