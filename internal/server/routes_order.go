package server

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"rooted-backend/internal/usecase"
)

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req usecase.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("invalid order request"))
		return
	}
	req.Phone = c.GetString(ctxPhone)
	req.CustomerID = c.GetString(ctxCustomerID)
	if req.StoreID == "" {
		s.fail(c, usecase.ErrBadRequest("storeId is required"))
		return
	}
	res, err := s.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		if businessReject(err) {
			s.rejected(c, err.Error())
			return
		}
		s.fail(c, err)
		return
	}
	s.ok(c, usecase.MsgOrderCreated, res)
}

func (s *Server) handleListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	userID := c.GetString(ctxUserID)
	if userID == "" {
		userID = c.GetString(ctxCustomerID)
	}
	res, err := s.orders.ListOrders(c.Request.Context(), c.Param("role"), userID, page, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Orders", res)
}

func (s *Server) handleGetOrder(c *gin.Context) {
	order, err := s.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Order details", order)
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	var patch usecase.StatusPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.fail(c, usecase.ErrBadRequest("invalid status patch"))
		return
	}
	if err := s.orders.UpdateStatus(c.Request.Context(), c.Param("id"), &patch); err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, usecase.MsgStatusUpdated, nil)
}

func (s *Server) handleFileReturn(c *gin.Context) {
	var req usecase.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("returnReason is required"))
		return
	}
	if err := s.orders.FileReturn(c.Request.Context(), c.Param("orderId"), &req); err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, usecase.MsgReturnSubmitted, nil)
}

type resolveReturnReq struct {
	Approve bool `json:"approve"`
}

func (s *Server) handleResolveReturn(c *gin.Context) {
	var req resolveReturnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("approve flag is required"))
		return
	}
	msg, err := s.orders.ResolveReturn(c.Request.Context(), c.Param("orderId"), req.Approve)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, msg, nil)
}

func (s *Server) handleTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	res, err := s.orders.Transactions(c.Request.Context(), c.GetString(ctxUserID), page, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Transactions", res)
}
