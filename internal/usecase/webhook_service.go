package usecase

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rooted-backend/internal/docstore"
	"rooted-backend/internal/domain"
)

const webhookReplaceRetries = 3

type CallbackLedger interface {
	Create(ctx context.Context, cb *domain.ProcessedCallback) error
}

// WebhookPayload is the gateway callback envelope.
type WebhookPayload struct {
	Payload WebhookEvent `json:"payload"`
}

type WebhookEvent struct {
	MerchantOrderID string `json:"merchantOrderId"`
	State           string `json:"state"`
	MetaInfo        struct {
		UDF1 string `json:"udf1"`
	} `json:"metaInfo"`
	PaymentDetails []domain.PaymentRecord `json:"paymentDetails"`
}

// WebhookService reconciles gateway callbacks against orders and
// subscriptions. A callback applies its side effects at most once: the
// ledger entry is written before anything else, and a duplicate key
// short-circuits the whole callback.
type WebhookService struct {
	Orders    OrderRepo
	Subs      SubscriptionRepo
	Carts     *CartService
	Inventory *InventoryService
	OrderSvc  *OrderService
	Ledger    CallbackLedger
	Notify    Notifier
	AuthHash  string
	Log       *logrus.Logger
	Now       func() time.Time
}

func (s *WebhookService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Authenticate checks the inbound credential hash against the configured
// shared-secret hash.
func (s *WebhookService) Authenticate(header string) error {
	if s.AuthHash == "" || subtle.ConstantTimeCompare([]byte(header), []byte(s.AuthHash)) != 1 {
		return ErrUnauthorized("webhook authentication failed")
	}
	return nil
}

// Process applies one authenticated callback. Redelivered callbacks are
// recognized by the gateway transaction id and acknowledged without side
// effects.
func (s *WebhookService) Process(ctx context.Context, payload *WebhookPayload) error {
	ev := payload.Payload
	if ev.MerchantOrderID == "" {
		return ErrBadRequest("merchantOrderId is required")
	}

	key := ev.MerchantOrderID + ":" + ev.State
	if len(ev.PaymentDetails) > 0 && ev.PaymentDetails[0].TransactionID != "" {
		key = ev.PaymentDetails[0].TransactionID
	}
	err := s.Ledger.Create(ctx, &domain.ProcessedCallback{
		ID:              key,
		MerchantOrderID: ev.MerchantOrderID,
		State:           ev.State,
		ReceivedOn:      s.now().UTC().Format(time.RFC3339),
	})
	if err == docstore.ErrConflict {
		if s.Log != nil {
			s.Log.WithField("callback", key).Info("duplicate callback ignored")
		}
		return nil
	}
	if err != nil {
		return err
	}

	if ev.MetaInfo.UDF1 == domain.OrderTypeSubscription {
		return s.applySubscription(ctx, &ev)
	}
	return s.applyOrder(ctx, &ev)
}

func (s *WebhookService) applyOrder(ctx context.Context, ev *WebhookEvent) error {
	order, err := s.Orders.Get(ctx, ev.MerchantOrderID)
	if err != nil {
		if err == docstore.ErrNotFound {
			return ErrNotFound("order")
		}
		return err
	}

	if ev.State == domain.PaymentCompleted {
		if err := s.Inventory.Decrement(ctx, order.StoreDetails.ID, order.ProductDetails); err != nil && s.Log != nil {
			s.Log.WithField("order", order.ID).WithError(err).Error("inventory decrement failed")
		}
		if err := s.Carts.Clear(ctx, order.CustomerDetails.Phone); err != nil && s.Log != nil {
			s.Log.WithField("order", order.ID).WithError(err).Warn("cart clear failed")
		}
	}

	// The replace can race a concurrent order write. Inventory and cart
	// effects above ran once already, so the retry only re-reads the
	// document and reapplies the payment fields.
	for attempt := 0; ; attempt++ {
		order.PaymentDetails = domain.PaymentDetails{
			PaymentStatus:  ev.State,
			PaymentDetails: ev.PaymentDetails,
		}
		err = s.Orders.Replace(ctx, order)
		if err == nil {
			break
		}
		if err != docstore.ErrConflict || attempt >= webhookReplaceRetries-1 {
			return err
		}
		if order, err = s.Orders.Get(ctx, ev.MerchantOrderID); err != nil {
			return err
		}
	}

	if ev.State == domain.PaymentCompleted {
		s.postCommit(order.CustomerDetails.Phone,
			"Your order "+order.ID+" is confirmed and being prepared.")
	}
	return nil
}

func (s *WebhookService) applySubscription(ctx context.Context, ev *WebhookEvent) error {
	sub, err := s.Subs.Get(ctx, ev.MerchantOrderID)
	if err != nil {
		if err == docstore.ErrNotFound {
			return ErrNotFound("subscription")
		}
		return err
	}

	paid := decimal.Zero
	for _, p := range ev.PaymentDetails {
		paid = paid.Add(decimal.New(p.Amount, -2))
	}
	payment := domain.SubscriptionPayment{
		PaymentDetails: ev.PaymentDetails,
		PaymentStatus:  ev.State,
		PaidAmount:     paid.InexactFloat64(),
		PaidOn:         s.now().UTC().Format(time.RFC3339),
	}

	var fulfilled []string
	if ev.State == domain.PaymentCompleted {
		fulfilled = make([]string, 0, len(sub.PendingOrderDates))
		for _, date := range sub.PendingOrderDates {
			order, oerr := s.OrderSvc.PersistSubscriptionOrder(ctx, sub, date)
			if oerr != nil {
				if s.Log != nil {
					s.Log.WithFields(logrus.Fields{"subscription": sub.ID, "date": date}).
						WithError(oerr).Error("subscription order creation failed")
				}
				continue
			}
			if derr := s.Inventory.Decrement(ctx, sub.StoreDetails.ID, order.ProductDetails); derr != nil && s.Log != nil {
				s.Log.WithField("order", order.ID).WithError(derr).Error("inventory decrement failed")
			}
			fulfilled = append(fulfilled, date)
		}

		if cerr := s.Carts.Clear(ctx, sub.Phone); cerr != nil && s.Log != nil {
			s.Log.WithField("subscription", sub.ID).WithError(cerr).Warn("cart clear failed")
		}
	}

	// Orders, inventory and cart are settled above; the retry only
	// re-reads the subscription and reapplies the payment record and
	// date moves when a concurrent write bumps the revision.
	for attempt := 0; ; attempt++ {
		sub.Payments = append(sub.Payments, payment)
		if len(fulfilled) > 0 {
			remaining := make([]string, 0, len(sub.PendingOrderDates))
			for _, date := range sub.PendingOrderDates {
				moved := false
				for _, f := range fulfilled {
					if f == date {
						moved = true
						break
					}
				}
				if !moved {
					remaining = append(remaining, date)
				}
			}
			sub.SubscriptionOrderDates = append(sub.SubscriptionOrderDates, fulfilled...)
			sub.PendingOrderDates = remaining
		}
		err = s.Subs.Replace(ctx, sub)
		if err == nil {
			break
		}
		if err != docstore.ErrConflict || attempt >= webhookReplaceRetries-1 {
			return err
		}
		if sub, err = s.Subs.Get(ctx, ev.MerchantOrderID); err != nil {
			return err
		}
	}
	if ev.State == domain.PaymentCompleted {
		s.postCommit(sub.Phone,
			"Your subscription "+sub.ID+" is active. Deliveries are scheduled.")
	}
	return nil
}

// postCommit runs notification effects after the authoritative write.
// Effects are detached from the request context so a cancelled caller
// cannot abort them; failures are logged and dropped.
func (s *WebhookService) postCommit(phone, message string) {
	if s.Notify == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Notify.Send(ctx, phone, message); err != nil && s.Log != nil {
			s.Log.WithField("phone", phone).WithError(err).Warn("notification send failed")
		}
	}()
}
