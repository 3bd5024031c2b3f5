package docstore

import "errors"

// Container names, one logical collection per entity type.
const (
	ContainerCartItems     = "CartItems"
	ContainerProducts      = "Products"
	ContainerStoreProduct  = "StoreProduct"
	ContainerStoreDetails  = "StoreDetails"
	ContainerCustomers     = "Customers"
	ContainerOrder         = "Order"
	ContainerSubscriptions = "Subscriptions"
	ContainerCouponCodes   = "CouponCodes"
	ContainerCounters      = "Counters"
	ContainerCallbacks     = "ProcessedCallbacks"
)

var (
	// ErrNotFound: the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict: a create hit an existing id, or a replace lost the
	// revision race. Callers retry the whole read-modify-write step.
	ErrConflict = errors.New("document revision conflict")
)
