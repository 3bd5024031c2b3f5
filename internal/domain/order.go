package domain

type OrderStatus string

const (
	OrderNew            OrderStatus = "New"
	OrderAccepted       OrderStatus = "Accepted"
	OrderPacked         OrderStatus = "Order Packed"
	OrderDriverAssigned OrderStatus = "Driver Assigned"
	OrderDriverAccepted OrderStatus = "Driver Accepted"
	OrderPickedUp       OrderStatus = "Order Picked Up"
	OrderOutForDelivery OrderStatus = "Out for Delivery"
	OrderDelivered      OrderStatus = "Delivered"
	OrderCancelled      OrderStatus = "Cancelled"
	OrderRejected       OrderStatus = "Rejected"
)

// Terminal reports whether no further status transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled || s == OrderRejected
}

const (
	OrderTypeQuick        = "Quick"
	OrderTypeScheduled    = "Scheduled"
	OrderTypeSubscription = "Subscriptions"
)

const (
	PaymentPending   = "Pending"
	PaymentCompleted = "COMPLETED"
)

// LineItem is a priced snapshot of one cart line against one store's
// inventory. It is copied into orders and subscriptions; it never
// references live cart or catalog state.
type LineItem struct {
	ProductID    string  `json:"productId" bson:"productId"`
	VariantID    string  `json:"variantId" bson:"variantId"`
	Quantity     int     `json:"quantity" bson:"quantity"`
	ProductName  string  `json:"productName,omitempty" bson:"productName,omitempty"`
	VariantName  string  `json:"variantName,omitempty" bson:"variantName,omitempty"`
	ProductImage string  `json:"productImage,omitempty" bson:"productImage,omitempty"`
	Type         string  `json:"type,omitempty" bson:"type,omitempty"`
	Value        string  `json:"value,omitempty" bson:"value,omitempty"`
	Metrics      string  `json:"metrics,omitempty" bson:"metrics,omitempty"`
	Price        float64 `json:"price" bson:"price"`
	OfferPrice   float64 `json:"offerPrice" bson:"offerPrice"`
	Stock        int     `json:"stock" bson:"stock"`
	OutOfStock   bool    `json:"outOfStock,omitempty" bson:"outOfStock,omitempty"`
}

type PriceDetails struct {
	SubTotal         float64 `json:"subTotal" bson:"subTotal"`
	DeliveryCharges  float64 `json:"deliveryCharges" bson:"deliveryCharges"`
	PackagingCharges float64 `json:"packagingCharges" bson:"packagingCharges"`
	PlatformCharges  float64 `json:"platformCharges" bson:"platformCharges"`
	DiscountPrice    float64 `json:"discountPrice" bson:"discountPrice"`
	TotalPrice       float64 `json:"totalPrice" bson:"totalPrice"`
}

// PaymentRecord is one gateway-reported payment attempt, copied verbatim
// from the webhook payload.
type PaymentRecord struct {
	TransactionID string `json:"transactionId" bson:"transactionId"`
	PaymentMode   string `json:"paymentMode,omitempty" bson:"paymentMode,omitempty"`
	Amount        int64  `json:"amount" bson:"amount"`
	State         string `json:"state" bson:"state"`
	Timestamp     int64  `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

type PaymentDetails struct {
	PaymentStatus  string          `json:"paymentStatus" bson:"paymentStatus"`
	PaymentDetails []PaymentRecord `json:"paymentDetails" bson:"paymentDetails"`
}

type CustomerSnapshot struct {
	CustomerID string  `json:"customerId" bson:"customerId"`
	Name       string  `json:"Name" bson:"Name"`
	Phone      string  `json:"phone" bson:"phone"`
	Address    Address `json:"address" bson:"address"`
}

type StoreSnapshot struct {
	ID        string `json:"id" bson:"id"`
	StoreName string `json:"storeName" bson:"storeName"`
	Phone     string `json:"phone" bson:"phone"`
	Address   string `json:"address" bson:"address"`
}

type DriverDetails struct {
	DriverID       string  `json:"driverId,omitempty" bson:"driverId,omitempty"`
	ContactDetails string  `json:"contactDetails,omitempty" bson:"contactDetails,omitempty"`
	Comission      float64 `json:"comission,omitempty" bson:"comission,omitempty"`
}

type ReturnCause struct {
	IsApproved   bool   `json:"isApproved" bson:"isApproved"`
	DamagedImage string `json:"damagedImage,omitempty" bson:"damagedImage,omitempty"`
	ReturnReason string `json:"returnReason" bson:"returnReason"`
}

type RefundDetails struct {
	RefundID     string `json:"refundId" bson:"refundId"`
	RefundStatus string `json:"refundStatus" bson:"refundStatus"`
	RefundedOn   string `json:"refundedOn" bson:"refundedOn"`
}

// Order is immutable after creation except for status, driver details,
// qr code path, payment details and the return/refund sub-records.
type Order struct {
	ID                string           `json:"id" bson:"_id"`
	CustomerDetails   CustomerSnapshot `json:"customerDetails" bson:"customerDetails"`
	ProductDetails    []LineItem       `json:"productDetails" bson:"productDetails"`
	StoreDetails      StoreSnapshot    `json:"storeDetails" bson:"storeDetails"`
	SubscriptionID    string           `json:"subscriptionId,omitempty" bson:"subscriptionId,omitempty"`
	ScheduledDelivery string           `json:"scheduledDelivery,omitempty" bson:"scheduledDelivery,omitempty"`
	Status            OrderStatus      `json:"status" bson:"status"`
	PriceDetails      PriceDetails     `json:"priceDetails" bson:"priceDetails"`
	CouponCode        string           `json:"couponCode,omitempty" bson:"couponCode,omitempty"`
	OrderType         string           `json:"orderType" bson:"orderType"`
	CreatedOn         string           `json:"createdOn" bson:"createdOn"`
	PaymentDetails    PaymentDetails   `json:"PaymentDetails" bson:"PaymentDetails"`
	DriverDetails     *DriverDetails   `json:"driverDetails,omitempty" bson:"driverDetails,omitempty"`
	QRCodePath        string           `json:"qrCodePath,omitempty" bson:"qrCodePath,omitempty"`
	ReturnOrder       bool             `json:"returnOrder,omitempty" bson:"returnOrder,omitempty"`
	ReturnCause       *ReturnCause     `json:"returnCause,omitempty" bson:"returnCause,omitempty"`
	OrderReattempt    bool             `json:"orderReattempt,omitempty" bson:"orderReattempt,omitempty"`
	ReturnOn          string           `json:"returnOn,omitempty" bson:"returnOn,omitempty"`
	RefundDetails     *RefundDetails   `json:"refundDetails,omitempty" bson:"refundDetails,omitempty"`
	StoreAdminID      string           `json:"storeAdminId,omitempty" bson:"storeAdminId,omitempty"`
	Rev               int64            `json:"-" bson:"rev"`
}
