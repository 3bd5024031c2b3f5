package server

import (
	"github.com/gin-gonic/gin"

	"rooted-backend/internal/usecase"
)

func (s *Server) handleWebhook(c *gin.Context) {
	if err := s.webhooks.Authenticate(c.GetHeader("Authorization")); err != nil {
		s.fail(c, err)
		return
	}
	var payload usecase.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.fail(c, usecase.ErrBadRequest("invalid webhook payload"))
		return
	}
	if err := s.webhooks.Process(c.Request.Context(), &payload); err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Callback processed", nil)
}

func (s *Server) handleRefund(c *gin.Context) {
	details, err := s.orders.Refund(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if businessReject(err) {
			s.rejected(c, err.Error())
			return
		}
		s.fail(c, err)
		return
	}
	s.ok(c, "Refund initiated", details)
}

func (s *Server) handleRefundStatus(c *gin.Context) {
	details, err := s.orders.RefundStatus(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, "Refund status", details)
}
