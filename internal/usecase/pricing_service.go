package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"rooted-backend/internal/domain"
)

type CartRepo interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Cart, error)
	Create(ctx context.Context, cart *domain.Cart) error
	Replace(ctx context.Context, cart *domain.Cart) error
}

type CatalogRepo interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type InventoryRepo interface {
	GetByStore(ctx context.Context, storeID string) (*domain.StoreInventory, error)
	Replace(ctx context.Context, si *domain.StoreInventory) error
}

// PricedCart is the authoritative pricing of a cart against one store at
// call time. Nothing is reserved; callers re-validate at commit.
type PricedCart struct {
	Products []domain.LineItem `json:"products"`
	SubTotal float64           `json:"subTotal"`
}

// HasOutOfStock reports whether any line exceeded available stock.
func (p *PricedCart) HasOutOfStock() bool {
	for _, li := range p.Products {
		if li.OutOfStock {
			return true
		}
	}
	return false
}

// PricingService resolves cart lines against store inventory (price,
// stock) and catalog metadata (names, images). Store inventory wins on
// any disagreement.
type PricingService struct {
	Carts     CartRepo
	Catalog   CatalogRepo
	Inventory InventoryRepo
}

// PriceCart prices the customer's current cart for the given store.
func (s *PricingService) PriceCart(ctx context.Context, phone, storeID string) (*PricedCart, error) {
	cart, err := s.Carts.GetByPhone(ctx, phone)
	if err != nil {
		return &PricedCart{Products: []domain.LineItem{}}, nil
	}
	return s.Price(ctx, cart.Products, storeID)
}

// Price prices an arbitrary set of lines for the given store. A line
// whose product or variant is missing from either the store inventory or
// the catalog keeps a zero price; a line asking for more than the
// available stock is flagged outOfStock and contributes nothing.
func (s *PricingService) Price(ctx context.Context, lines []domain.CartLine, storeID string) (*PricedCart, error) {
	out := &PricedCart{Products: []domain.LineItem{}}
	if len(lines) == 0 {
		return out, nil
	}

	inv, err := s.Inventory.GetByStore(ctx, storeID)
	if err != nil {
		return out, nil
	}

	subTotal := decimal.Zero
	for _, line := range lines {
		item := domain.LineItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		}

		invProduct := inv.FindProduct(line.ProductID)
		var invVariant *domain.InventoryVariant
		if invProduct != nil {
			invVariant = invProduct.FindVariant(line.VariantID)
		}
		product, perr := s.Catalog.GetProduct(ctx, line.ProductID)
		var variant *domain.Variant
		if perr == nil {
			if v, ok := product.FindVariant(line.VariantID); ok {
				variant = &v
			}
		}

		// Catalog/inventory drift must not break pricing: the line is
		// retained at zero price so the caller can surface it.
		if invVariant == nil || variant == nil {
			out.Products = append(out.Products, item)
			continue
		}

		item.ProductName = product.Name
		item.VariantName = variant.Name
		if len(variant.Images) > 0 {
			item.ProductImage = variant.Images[0]
		}
		item.Type = variant.Type
		item.Value = variant.Value
		item.Metrics = variant.Metrics
		item.Price = invVariant.Price
		item.OfferPrice = invVariant.OfferPrice
		item.Stock = invVariant.Stock

		if line.Quantity > invVariant.Stock {
			item.OutOfStock = true
			out.Products = append(out.Products, item)
			continue
		}

		unit := decimal.NewFromFloat(invVariant.Price)
		if invVariant.OfferPrice > 0 {
			unit = decimal.NewFromFloat(invVariant.OfferPrice)
		}
		subTotal = subTotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		out.Products = append(out.Products, item)
	}

	out.SubTotal = subTotal.Round(2).InexactFloat64()
	return out, nil
}
