package server

import (
	"github.com/gin-gonic/gin"

	"rooted-backend/internal/domain"
	"rooted-backend/internal/usecase"
)

type createCouponReq struct {
	CouponName      string  `json:"couponName" binding:"required"`
	Description     string  `json:"description"`
	DiscountType    string  `json:"discountType" binding:"required"`
	DiscountValue   float64 `json:"discountValue" binding:"required"`
	MaxCouponAmount float64 `json:"maxCouponAmount"`
	MinOrderAmount  float64 `json:"minOrderAmount"`
	MultiUse        bool    `json:"multiUse"`
}

func (s *Server) handleCouponCreate(c *gin.Context) {
	var req createCouponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("couponName, discountType and discountValue are required"))
		return
	}
	coupon := &domain.Coupon{
		CouponName:      req.CouponName,
		Description:     req.Description,
		DiscountType:    req.DiscountType,
		DiscountValue:   req.DiscountValue,
		MaxCouponAmount: req.MaxCouponAmount,
		MinOrderAmount:  req.MinOrderAmount,
		MultiUse:        req.MultiUse,
	}
	if err := s.coupons.CreateCoupon(c.Request.Context(), coupon); err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Coupon created", coupon)
}

type applyCouponReq struct {
	CouponCode string  `json:"couponCode" binding:"required"`
	SubTotal   float64 `json:"subTotal"`
}

func (s *Server) handleCouponApply(c *gin.Context) {
	var req applyCouponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("couponCode is required"))
		return
	}
	res, err := s.coupons.Evaluate(c.Request.Context(), req.CouponCode, req.SubTotal, c.GetString(ctxCustomerID))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !res.OK {
		s.rejected(c, res.Message)
		return
	}
	s.ok(c, res.Message, res)
}

func (s *Server) handleCouponList(c *gin.Context) {
	coupons, err := s.coupons.ListCoupons(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Coupons", coupons)
}

func (s *Server) handleCouponDelete(c *gin.Context) {
	if err := s.coupons.DeleteCoupon(c.Request.Context(), c.Param("couponId")); err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Coupon deleted", nil)
}
