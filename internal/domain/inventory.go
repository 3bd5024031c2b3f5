package domain

// InventoryVariant holds the authoritative stock and price for one SKU at
// one store.
type InventoryVariant struct {
	VariantID  string  `json:"variantId" bson:"variantId"`
	Stock      int     `json:"stock" bson:"stock"`
	Price      float64 `json:"price" bson:"price"`
	OfferPrice float64 `json:"offerPrice" bson:"offerPrice"`
}

// InventoryProduct mirrors one catalog product at one store. Stock must
// equal the sum of its variants' stock after every mutation.
type InventoryProduct struct {
	ProductID string             `json:"productId" bson:"productId"`
	Stock     int                `json:"stock" bson:"stock"`
	Variants  []InventoryVariant `json:"variants" bson:"variants"`
}

// StoreInventory is the single per-store stock document. Mutations are
// whole-document replaces guarded by Rev.
type StoreInventory struct {
	ID       string             `json:"id" bson:"_id"`
	StoreID  string             `json:"storeId" bson:"storeId"`
	Products []InventoryProduct `json:"products" bson:"products"`
	Rev      int64              `json:"-" bson:"rev"`
}

func (si *StoreInventory) FindProduct(productID string) *InventoryProduct {
	for i := range si.Products {
		if si.Products[i].ProductID == productID {
			return &si.Products[i]
		}
	}
	return nil
}

func (ip *InventoryProduct) FindVariant(variantID string) *InventoryVariant {
	for i := range ip.Variants {
		if ip.Variants[i].VariantID == variantID {
			return &ip.Variants[i]
		}
	}
	return nil
}

// RecomputeStock restores the product-level invariant after a variant
// stock change.
func (ip *InventoryProduct) RecomputeStock() {
	total := 0
	for _, v := range ip.Variants {
		total += v.Stock
	}
	ip.Stock = total
}
