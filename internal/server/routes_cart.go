package server

import (
	"github.com/gin-gonic/gin"

	"rooted-backend/internal/usecase"
)

type cartLineReq struct {
	StoreID   string `json:"storeId"`
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId" binding:"required"`
}

func (s *Server) handleCartAdd(c *gin.Context) {
	var req cartLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("productId and variantId are required"))
		return
	}
	cart, err := s.carts.Add(c.Request.Context(), c.GetString(ctxPhone), req.StoreID, req.ProductID, req.VariantID)
	if err != nil {
		if businessReject(err) {
			s.rejected(c, err.Error())
			return
		}
		s.fail(c, err)
		return
	}
	s.ok(c, "Product added to cart", cart)
}

func (s *Server) handleCartRemove(c *gin.Context) {
	var req cartLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("productId and variantId are required"))
		return
	}
	cart, err := s.carts.Remove(c.Request.Context(), c.GetString(ctxPhone), req.ProductID, req.VariantID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Product removed from cart", cart)
}

func (s *Server) handleCartDelete(c *gin.Context) {
	var req cartLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("productId and variantId are required"))
		return
	}
	cart, err := s.carts.DeleteLine(c.Request.Context(), c.GetString(ctxPhone), req.ProductID, req.VariantID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Product deleted from cart", cart)
}

func (s *Server) handleCartClear(c *gin.Context) {
	if err := s.carts.Clear(c.Request.Context(), c.GetString(ctxPhone)); err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Cart cleared", nil)
}

func (s *Server) handleCartView(c *gin.Context) {
	priced, err := s.carts.View(c.Request.Context(), c.GetString(ctxPhone), c.Param("storeId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Cart details", priced)
}

type orderChargesReq struct {
	StoreID       string `json:"storeId" binding:"required"`
	CouponCode    string `json:"couponCode"`
	AddressOrigin string `json:"addressOrigin"`
	WeeksCount    int    `json:"weeksCount"`
}

func (s *Server) handleOrderCharges(c *gin.Context) {
	var req orderChargesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("storeId is required"))
		return
	}
	preview, err := s.orders.Charges(c.Request.Context(), c.GetString(ctxPhone), req.StoreID,
		c.GetString(ctxCustomerID), req.CouponCode, req.AddressOrigin, req.WeeksCount)
	if err != nil {
		if businessReject(err) {
			s.rejected(c, err.Error())
			return
		}
		s.fail(c, err)
		return
	}
	s.ok(c, "Order charges", preview)
}
