package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"rooted-backend/internal/docstore"
	"rooted-backend/internal/domain"
)

const decrementRetries = 3

// InventoryService applies post-payment stock decrements. Decrements are
// best effort per line; a line that cannot be applied is skipped and
// logged rather than failing the whole mutation, because the payment it
// follows has already settled.
type InventoryService struct {
	Inventory InventoryRepo
	Log       *logrus.Logger
}

// Decrement subtracts the ordered quantities from the store's stock in a
// single guarded replace. A line whose product or variant is missing, or
// whose stock would go negative, is skipped. Revision conflicts reread
// and retry so two orders draining the same SKU serialize correctly.
func (s *InventoryService) Decrement(ctx context.Context, storeID string, lines []domain.LineItem) error {
	if len(lines) == 0 {
		return nil
	}
	var lastErr error
	for attempt := 0; attempt < decrementRetries; attempt++ {
		inv, err := s.Inventory.GetByStore(ctx, storeID)
		if err != nil {
			if err == docstore.ErrNotFound {
				return ErrNotFound("store inventory")
			}
			return err
		}

		for _, line := range lines {
			product := inv.FindProduct(line.ProductID)
			if product == nil {
				s.skip(storeID, line, "product missing from inventory")
				continue
			}
			variant := product.FindVariant(line.VariantID)
			if variant == nil {
				s.skip(storeID, line, "variant missing from inventory")
				continue
			}
			if variant.Stock < line.Quantity {
				s.skip(storeID, line, "insufficient stock")
				continue
			}
			variant.Stock -= line.Quantity
			product.RecomputeStock()
		}

		if err := s.Inventory.Replace(ctx, inv); err != nil {
			if err == docstore.ErrConflict {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

func (s *InventoryService) skip(storeID string, line domain.LineItem, reason string) {
	if s.Log == nil {
		return
	}
	s.Log.WithFields(logrus.Fields{
		"store":   storeID,
		"product": line.ProductID,
		"variant": line.VariantID,
		"qty":     line.Quantity,
	}).Warnf("inventory decrement skipped: %s", reason)
}
