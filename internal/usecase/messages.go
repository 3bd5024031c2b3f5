package usecase

// User-facing messages reused verbatim in the response envelope.
const (
	MsgOutOfStock       = "Some products are out of stock. Please check your cart."
	MsgNoProductInCart  = "No products found in cart. Please add."
	MsgOrderCreated     = "Order created successfully"
	MsgPaymentURLFailed = "Failed to create payment URL"
	MsgStatusUpdated    = "Order status updated"
	MsgReturnSubmitted  = "Product return request has submitted"
	MsgReturnAccepted   = "Product return has accepted"
	MsgReturnDenied     = "Unable to accept the product return"

	MsgCouponNotFound = "Coupon not found"
	MsgCouponUsed     = "Coupon already used by this user"
	MsgCouponMinimum  = "Minimum order amount should be greater than "
	MsgCouponExists   = "Coupon already exists"
	MsgCouponValid    = "Coupon is valid"

	MsgSubscriptionCreated     = "Subscription created successfully"
	MsgSubscriptionNotFound    = "Unable to find the subscription"
	MsgSubscriptionRenewed     = "Subscription renewed successfully"
	MsgSubscriptionRescheduled = "Subscription rescheduled successfully"
)
