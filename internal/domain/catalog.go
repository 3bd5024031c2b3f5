package domain

// Variant is a purchasable SKU of a catalog product. Catalog variants
// carry presentation metadata only; sellable price and stock live in the
// per-store inventory record.
type Variant struct {
	ID        string   `json:"id" bson:"id"`
	Name      string   `json:"name" bson:"name"`
	Type      string   `json:"type" bson:"type"`
	Value     string   `json:"value" bson:"value"`
	Metrics   string   `json:"metrics" bson:"metrics"`
	Images    []string `json:"images" bson:"images"`
	Discount  float64  `json:"discount" bson:"discount"`
	IsDefault bool     `json:"isdefault" bson:"isdefault"`
}

type Product struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Active       bool      `json:"active" bson:"active"`
	StoreAdminID string    `json:"storeAdminId,omitempty" bson:"storeAdminId,omitempty"`
	Variants     []Variant `json:"variants" bson:"variants"`
}

// FindVariant returns the catalog variant with the given id, if any.
func (p *Product) FindVariant(variantID string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return Variant{}, false
}
