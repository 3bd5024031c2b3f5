package domain

// CartLine is one entry in a customer's cart. Quantity is the only
// customer-editable field; price and stock are resolved per store at
// pricing time.
type CartLine struct {
	ProductID string `json:"productId" bson:"productId"`
	VariantID string `json:"variantId" bson:"variantId"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Cart is owned by a single customer phone. It is cleared as a side
// effect of a completed payment.
type Cart struct {
	ID       string     `json:"id" bson:"_id"`
	Phone    string     `json:"phone" bson:"phone"`
	Products []CartLine `json:"products" bson:"products"`
	Rev      int64      `json:"-" bson:"rev"`
}
