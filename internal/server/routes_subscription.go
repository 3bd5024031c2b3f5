package server

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"rooted-backend/internal/usecase"
)

func (s *Server) handleCreateSubscription(c *gin.Context) {
	var req usecase.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("invalid subscription request"))
		return
	}
	req.Phone = c.GetString(ctxPhone)
	req.CustomerID = c.GetString(ctxCustomerID)
	res, err := s.subscriptions.Create(c.Request.Context(), &req)
	if err != nil {
		if businessReject(err) {
			s.rejected(c, err.Error())
			return
		}
		s.fail(c, err)
		return
	}
	s.ok(c, usecase.MsgSubscriptionCreated, res)
}

type renewSubscriptionReq struct {
	SubscriptionID string `json:"subscriptionId" binding:"required"`
	Weeks          int    `json:"weeks" binding:"required"`
}

func (s *Server) handleRenewSubscription(c *gin.Context) {
	var req renewSubscriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("subscriptionId and weeks are required"))
		return
	}
	res, err := s.subscriptions.Renew(c.Request.Context(), req.SubscriptionID, req.Weeks)
	if err != nil {
		if businessReject(err) {
			s.rejected(c, err.Error())
			return
		}
		s.fail(c, err)
		return
	}
	s.ok(c, usecase.MsgSubscriptionRenewed, res)
}

type rescheduleSubscriptionReq struct {
	SubscriptionID string `json:"subscriptionId" binding:"required"`
	OldDate        string `json:"oldDate" binding:"required"`
}

func (s *Server) handleRescheduleSubscription(c *gin.Context) {
	var req rescheduleSubscriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, usecase.ErrBadRequest("subscriptionId and oldDate are required"))
		return
	}
	newDate, err := s.subscriptions.Reschedule(c.Request.Context(), req.SubscriptionID, req.OldDate)
	if err != nil {
		if businessReject(err) {
			s.rejected(c, err.Error())
			return
		}
		s.fail(c, err)
		return
	}
	s.ok(c, usecase.MsgSubscriptionRescheduled, gin.H{"newDate": newDate})
}

func (s *Server) handleListSubscriptions(c *gin.Context) {
	subs, err := s.subscriptions.List(c.Request.Context(), c.GetString(ctxPhone))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Subscriptions", subs)
}

func (s *Server) handleOrdersBySubscription(c *gin.Context) {
	orders, err := s.subscriptions.OrdersBySubscription(c.Request.Context(),
		c.Param("subscriptionId"), c.GetString(ctxCustomerID))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Subscription orders", orders)
}

func (s *Server) handleUpcomingSubscriptions(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	subs, err := s.subscriptions.Upcoming(c.Request.Context(), days)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Upcoming subscriptions", subs)
}
