package domain

// Store is the StoreDetails record: contact data, service area and the
// fixed charges applied at order assembly.
type Store struct {
	ID               string  `json:"id" bson:"_id"`
	StoreName        string  `json:"storeName" bson:"storeName"`
	Phone            string  `json:"phone" bson:"phone"`
	StoreAddress     string  `json:"storeAddress" bson:"storeAddress"`
	Coordinates      string  `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	DeliveryRange    float64 `json:"deliveryRange" bson:"deliveryRange"`
	DeliveryCharges  float64 `json:"deliveryCharges" bson:"deliveryCharges"`
	PackagingCharges float64 `json:"packagingCharges" bson:"packagingCharges"`
	PlatformCharges  float64 `json:"platformCharges" bson:"platformCharges"`
	StoreAdminID     string  `json:"storeAdminId,omitempty" bson:"storeAdminId,omitempty"`
	Status           string  `json:"status,omitempty" bson:"status,omitempty"`
}

func (s *Store) Snapshot() StoreSnapshot {
	return StoreSnapshot{
		ID:        s.ID,
		StoreName: s.StoreName,
		Phone:     s.Phone,
		Address:   s.StoreAddress,
	}
}

type Address struct {
	ID     string `json:"id,omitempty" bson:"id,omitempty"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Origin string `json:"origin" bson:"origin"`
}

// Customer is the slice of the Customers record the core needs: identity
// and saved addresses for order snapshots.
type Customer struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Phone     string    `json:"phone" bson:"phone"`
	Addresses []Address `json:"addresses" bson:"addresses"`
}
