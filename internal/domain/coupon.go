package domain

const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// Coupon name and id are stored uppercased; lookup is case-insensitive.
// UsedBy is the set of customers that redeemed the coupon; RedeemedOrders
// keys each commit by the owning order so a replayed commit is a no-op.
type Coupon struct {
	ID              string   `json:"id" bson:"_id"`
	CouponName      string   `json:"couponName" bson:"couponName"`
	Description     string   `json:"description,omitempty" bson:"description,omitempty"`
	DiscountType    string   `json:"discountType" bson:"discountType"`
	DiscountValue   float64  `json:"discountValue" bson:"discountValue"`
	MaxCouponAmount float64  `json:"maxCouponAmount,omitempty" bson:"maxCouponAmount,omitempty"`
	MinOrderAmount  float64  `json:"minOrderAmount,omitempty" bson:"minOrderAmount,omitempty"`
	MultiUse        bool     `json:"multiUse" bson:"multiUse"`
	UsedBy          []string `json:"usedBy" bson:"usedBy"`
	RedeemedOrders  []string `json:"redeemedOrders,omitempty" bson:"redeemedOrders,omitempty"`
	Status          string   `json:"status" bson:"status"`
	CreatedDate     string   `json:"createdDate" bson:"createdDate"`
	Rev             int64    `json:"-" bson:"rev"`
}

func (c *Coupon) UsedByCustomer(customerID string) bool {
	for _, id := range c.UsedBy {
		if id == customerID {
			return true
		}
	}
	return false
}

func (c *Coupon) RedeemedForOrder(orderID string) bool {
	for _, id := range c.RedeemedOrders {
		if id == orderID {
			return true
		}
	}
	return false
}
