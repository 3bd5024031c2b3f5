package docstore

import (
	"context"
	"testing"

	"rooted-backend/internal/domain"
)

func TestMemoryReplaceDetectsStaleRev(t *testing.T) {
	repo := NewMemoryCouponRepo()
	ctx := context.Background()

	c := &domain.Coupon{ID: "SAVE10", CouponName: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: 10}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	a, _ := repo.Get(ctx, "SAVE10")
	b, _ := repo.Get(ctx, "SAVE10")

	a.DiscountValue = 15
	if err := repo.Replace(ctx, a); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	b.DiscountValue = 20
	if err := repo.Replace(ctx, b); err != ErrConflict {
		t.Fatalf("second replace: got %v, want ErrConflict", err)
	}
}

func TestMemoryCreateDuplicate(t *testing.T) {
	ledger := NewMemoryCallbackLedger()
	ctx := context.Background()

	cb := &domain.ProcessedCallback{ID: "T1", MerchantOrderID: "O1", State: "COMPLETED"}
	if err := ledger.Create(ctx, cb); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ledger.Create(ctx, cb); err != ErrConflict {
		t.Fatalf("duplicate create: got %v, want ErrConflict", err)
	}
}

func TestMemoryClonesDocuments(t *testing.T) {
	repo := NewMemoryCartRepo()
	ctx := context.Background()

	cart := &domain.Cart{ID: "C1", Phone: "9", Products: []domain.CartLine{{ProductID: "P1", VariantID: "V1", Quantity: 1}}}
	if err := repo.Create(ctx, cart); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	cart.Products[0].Quantity = 99
	stored, err := repo.GetByPhone(ctx, "9")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Products[0].Quantity != 1 {
		t.Fatalf("stored quantity = %d, want 1", stored.Products[0].Quantity)
	}
}

func TestMemoryListUpcoming(t *testing.T) {
	repo := NewMemorySubscriptionRepo()
	ctx := context.Background()

	_ = repo.Create(ctx, &domain.Subscription{ID: "S1", Phone: "9", SubscriptionOrderDates: []string{"2025-03-12"}})
	_ = repo.Create(ctx, &domain.Subscription{ID: "S2", Phone: "9", SubscriptionOrderDates: []string{"2025-04-01"}})

	subs, err := repo.ListUpcoming(ctx, "2025-03-10", "2025-03-17")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != "S1" {
		t.Fatalf("got %d subs, want just S1", len(subs))
	}
}
