package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rooted-backend/internal/docstore"
	"rooted-backend/internal/domain"
)

type CouponRepo interface {
	FindByName(ctx context.Context, name string) (*domain.Coupon, error)
	Get(ctx context.Context, id string) (*domain.Coupon, error)
	Create(ctx context.Context, c *domain.Coupon) error
	Replace(ctx context.Context, c *domain.Coupon) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Coupon, error)
}

// CouponResult is a pure evaluation outcome. A rejected coupon carries
// the user-facing reason and a zero discount; evaluation never mutates
// the coupon.
type CouponResult struct {
	OK       bool    `json:"ok"`
	Message  string  `json:"message"`
	Discount float64 `json:"discount"`
}

const couponCommitRetries = 3

type CouponService struct {
	Coupons CouponRepo
	Log     *logrus.Logger
	Now     func() time.Time
}

func (s *CouponService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateCoupon registers a new coupon. Names are stored uppercased and
// double as the id, so a duplicate name is rejected outright.
func (s *CouponService) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	name := strings.ToUpper(strings.TrimSpace(c.CouponName))
	if name == "" {
		return ErrBadRequest("couponName is required")
	}
	if c.DiscountType != domain.DiscountPercentage && c.DiscountType != domain.DiscountFlat {
		return ErrBadRequest("discountType must be percentage or flat")
	}
	if c.DiscountValue <= 0 {
		return ErrBadRequest("discountValue must be positive")
	}
	if _, err := s.Coupons.FindByName(ctx, name); err == nil {
		return ErrConflict(MsgCouponExists)
	}
	c.ID = name
	c.CouponName = name
	if c.Status == "" {
		c.Status = "active"
	}
	if c.UsedBy == nil {
		c.UsedBy = []string{}
	}
	c.CreatedDate = s.now().UTC().Format(time.RFC3339)
	return s.Coupons.Create(ctx, c)
}

func (s *CouponService) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return s.Coupons.List(ctx)
}

func (s *CouponService) DeleteCoupon(ctx context.Context, id string) error {
	err := s.Coupons.Delete(ctx, strings.ToUpper(id))
	if err == docstore.ErrNotFound {
		return ErrNotFound("coupon")
	}
	return err
}

// Evaluate checks a coupon against an order subtotal for a customer and
// computes the discount it would grant. Results are ordered: existence,
// then the minimum-order threshold, then prior use.
func (s *CouponService) Evaluate(ctx context.Context, couponName string, subTotal float64, customerID string) (*CouponResult, error) {
	coupon, err := s.Coupons.FindByName(ctx, strings.TrimSpace(couponName))
	if err != nil {
		if err == docstore.ErrNotFound {
			return &CouponResult{Message: MsgCouponNotFound}, nil
		}
		return nil, err
	}
	if subTotal < coupon.MinOrderAmount {
		return &CouponResult{Message: fmt.Sprintf("%s%v", MsgCouponMinimum, coupon.MinOrderAmount)}, nil
	}
	if !coupon.MultiUse && coupon.UsedByCustomer(customerID) {
		return &CouponResult{Message: MsgCouponUsed}, nil
	}
	return &CouponResult{OK: true, Message: MsgCouponValid, Discount: Discount(coupon, subTotal)}, nil
}

// Discount computes the amount a coupon takes off the given subtotal.
// Either discount type is clamped to MaxCouponAmount when one is set;
// no discount can exceed the subtotal itself.
func Discount(c *domain.Coupon, subTotal float64) float64 {
	sub := decimal.NewFromFloat(subTotal)
	var d decimal.Decimal
	switch c.DiscountType {
	case domain.DiscountPercentage:
		d = sub.Mul(decimal.NewFromFloat(c.DiscountValue)).Div(decimal.NewFromInt(100))
	case domain.DiscountFlat:
		d = decimal.NewFromFloat(c.DiscountValue)
	default:
		return 0
	}
	if c.MaxCouponAmount > 0 {
		if max := decimal.NewFromFloat(c.MaxCouponAmount); d.GreaterThan(max) {
			d = max
		}
	}
	if d.GreaterThan(sub) {
		d = sub
	}
	return d.Round(2).InexactFloat64()
}

// Commit records that orderID redeemed the coupon. The order id keys the
// redemption, so replaying the same commit changes nothing; concurrent
// commits retry on revision conflicts.
func (s *CouponService) Commit(ctx context.Context, couponName, customerID, orderID string) error {
	var lastErr error
	for attempt := 0; attempt < couponCommitRetries; attempt++ {
		coupon, err := s.Coupons.FindByName(ctx, couponName)
		if err != nil {
			if err == docstore.ErrNotFound {
				return ErrNotFound("coupon")
			}
			return err
		}
		if coupon.RedeemedForOrder(orderID) {
			return nil
		}
		coupon.RedeemedOrders = append(coupon.RedeemedOrders, orderID)
		if !coupon.UsedByCustomer(customerID) {
			coupon.UsedBy = append(coupon.UsedBy, customerID)
		}
		if err := s.Coupons.Replace(ctx, coupon); err != nil {
			if err == docstore.ErrConflict {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{"coupon": couponName, "order": orderID}).
			Warn("coupon commit gave up after retries")
	}
	return lastErr
}
