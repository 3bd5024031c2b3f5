package usecase

import (
	"context"

	"github.com/google/uuid"

	"rooted-backend/internal/docstore"
	"rooted-backend/internal/domain"
)

// CartService owns cart mutations. A cart is created lazily on the first
// add; concurrent mutations from the same customer race last-write-wins
// at the document level.
type CartService struct {
	Carts     CartRepo
	Inventory InventoryRepo
	Pricing   *PricingService
}

// Add increments the quantity of one variant by one, creating the cart
// and the line as needed. The increment is refused when it would exceed
// the store's available stock.
func (s *CartService) Add(ctx context.Context, phone, storeID, productID, variantID string) (*domain.Cart, error) {
	inv, err := s.Inventory.GetByStore(ctx, storeID)
	if err != nil {
		if err == docstore.ErrNotFound {
			return nil, ErrNotFound("store inventory")
		}
		return nil, err
	}
	var stock int
	if p := inv.FindProduct(productID); p != nil {
		if v := p.FindVariant(variantID); v != nil {
			stock = v.Stock
		}
	}

	cart, err := s.Carts.GetByPhone(ctx, phone)
	if err == docstore.ErrNotFound {
		if stock < 1 {
			return nil, ErrBadRequest(MsgOutOfStock)
		}
		cart = &domain.Cart{
			ID:       uuid.NewString(),
			Phone:    phone,
			Products: []domain.CartLine{{ProductID: productID, VariantID: variantID, Quantity: 1}},
		}
		if err := s.Carts.Create(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Products {
		line := &cart.Products[i]
		if line.ProductID == productID && line.VariantID == variantID {
			if line.Quantity+1 > stock {
				return nil, ErrBadRequest(MsgOutOfStock)
			}
			line.Quantity++
			found = true
			break
		}
	}
	if !found {
		if stock < 1 {
			return nil, ErrBadRequest(MsgOutOfStock)
		}
		cart.Products = append(cart.Products, domain.CartLine{ProductID: productID, VariantID: variantID, Quantity: 1})
	}
	if err := s.Carts.Replace(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove decrements one variant's quantity by one, dropping the line
// when it reaches zero.
func (s *CartService) Remove(ctx context.Context, phone, productID, variantID string) (*domain.Cart, error) {
	cart, err := s.Carts.GetByPhone(ctx, phone)
	if err != nil {
		if err == docstore.ErrNotFound {
			return nil, ErrNotFound("cart")
		}
		return nil, err
	}
	for i := range cart.Products {
		line := &cart.Products[i]
		if line.ProductID == productID && line.VariantID == variantID {
			line.Quantity--
			if line.Quantity <= 0 {
				cart.Products = append(cart.Products[:i], cart.Products[i+1:]...)
			}
			if err := s.Carts.Replace(ctx, cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
	}
	return nil, ErrNotFound("cart item")
}

// DeleteLine removes one variant's line regardless of quantity.
func (s *CartService) DeleteLine(ctx context.Context, phone, productID, variantID string) (*domain.Cart, error) {
	cart, err := s.Carts.GetByPhone(ctx, phone)
	if err != nil {
		if err == docstore.ErrNotFound {
			return nil, ErrNotFound("cart")
		}
		return nil, err
	}
	for i := range cart.Products {
		if cart.Products[i].ProductID == productID && cart.Products[i].VariantID == variantID {
			cart.Products = append(cart.Products[:i], cart.Products[i+1:]...)
			if err := s.Carts.Replace(ctx, cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
	}
	return nil, ErrNotFound("cart item")
}

// Clear empties the cart. Clearing a customer with no cart is a no-op.
func (s *CartService) Clear(ctx context.Context, phone string) error {
	cart, err := s.Carts.GetByPhone(ctx, phone)
	if err != nil {
		if err == docstore.ErrNotFound {
			return nil
		}
		return err
	}
	cart.Products = []domain.CartLine{}
	return s.Carts.Replace(ctx, cart)
}

// View prices the cart against a store for display.
func (s *CartService) View(ctx context.Context, phone, storeID string) (*PricedCart, error) {
	return s.Pricing.PriceCart(ctx, phone, storeID)
}
