package domain

// SubscriptionPayment is one bulk payment against a subscription batch.
type SubscriptionPayment struct {
	PaymentDetails []PaymentRecord `json:"paymentDetails" bson:"paymentDetails"`
	PaymentStatus  string          `json:"paymentStatus" bson:"paymentStatus"`
	PaidAmount     float64         `json:"paidAmount" bson:"paidAmount"`
	PaidOn         string          `json:"paidOn" bson:"paidOn"`
}

// Subscription is a recurring weekly delivery plan. Dates move
// pending -> subscriptionOrderDates when the batch payment completes and
// the concrete orders exist; pending and fulfilled date sets never
// intersect.
type Subscription struct {
	ID                     string                `json:"id" bson:"_id"`
	Phone                  string                `json:"phone" bson:"phone"`
	Products               []LineItem            `json:"products" bson:"products"`
	StoreDetails           StoreSnapshot         `json:"storeDetails" bson:"storeDetails"`
	CustomerDetails        CustomerSnapshot      `json:"customerDetails" bson:"customerDetails"`
	SubscriptionOrderDates []string              `json:"subscriptionOrderDates" bson:"subscriptionOrderDates"`
	PendingOrderDates      []string              `json:"pendingOrderDates" bson:"pendingOrderDates"`
	CanceledOrderDates     []string              `json:"canceledOrderDates" bson:"canceledOrderDates"`
	Day                    int                   `json:"day" bson:"day"`
	WeeksCount             int                   `json:"weeksCount" bson:"weeksCount"`
	DeliveryTime           string                `json:"deliveryTime" bson:"deliveryTime"`
	Payments               []SubscriptionPayment `json:"payments" bson:"payments"`
	CouponCode             string                `json:"couponCode,omitempty" bson:"couponCode,omitempty"`
	PriceDetails           PriceDetails          `json:"priceDetails" bson:"priceDetails"`
	StoreAdminID           string                `json:"storeAdminId,omitempty" bson:"storeAdminId,omitempty"`
	CreatedDate            string                `json:"createdDate" bson:"createdDate"`
	Rev                    int64                 `json:"-" bson:"rev"`
}

func (s *Subscription) HasFulfilledDate(date string) bool {
	for _, d := range s.SubscriptionOrderDates {
		if d == date {
			return true
		}
	}
	return false
}

func (s *Subscription) HasCanceledDate(date string) bool {
	for _, d := range s.CanceledOrderDates {
		if d == date {
			return true
		}
	}
	return false
}

// LastScheduledDate returns the latest date across fulfilled and pending
// sets; dates are ISO yyyy-mm-dd so string order is date order.
func (s *Subscription) LastScheduledDate() string {
	last := ""
	for _, d := range s.SubscriptionOrderDates {
		if d > last {
			last = d
		}
	}
	for _, d := range s.PendingOrderDates {
		if d > last {
			last = d
		}
	}
	return last
}
