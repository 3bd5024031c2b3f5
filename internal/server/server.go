// Package server wires the HTTP surface: gin routes, JWT auth, and the
// {success, message, data} response envelope every route returns.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rooted-backend/internal/config"
	"rooted-backend/internal/usecase"
)

type Server struct {
	cfg    config.Config
	log    *logrus.Logger
	engine *gin.Engine

	carts         *usecase.CartService
	coupons       *usecase.CouponService
	orders        *usecase.OrderService
	subscriptions *usecase.SubscriptionService
	webhooks      *usecase.WebhookService
}

type Services struct {
	Carts         *usecase.CartService
	Coupons       *usecase.CouponService
	Orders        *usecase.OrderService
	Subscriptions *usecase.SubscriptionService
	Webhooks      *usecase.WebhookService
}

func New(cfg config.Config, log *logrus.Logger, svc Services) *Server {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:           cfg,
		log:           log,
		engine:        gin.New(),
		carts:         svc.Carts,
		coupons:       svc.Coupons,
		orders:        svc.Orders,
		subscriptions: svc.Subscriptions,
		webhooks:      svc.Webhooks,
	}
	s.engine.Use(gin.Recovery(), s.requestLog(), s.cors())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	// The webhook authenticates itself against the gateway secret, not a
	// user token.
	s.engine.POST("/payments/webhook", s.handleWebhook)

	auth := s.engine.Group("/", s.authRequired())

	cart := auth.Group("/cart")
	cart.POST("/add", s.handleCartAdd)
	cart.POST("/remove", s.handleCartRemove)
	cart.POST("/delete", s.handleCartDelete)
	cart.POST("/clear", s.handleCartClear)
	cart.GET("/view/:storeId", s.handleCartView)
	cart.POST("/orderCharges", s.handleOrderCharges)

	coupon := auth.Group("/coupon")
	coupon.POST("/createcoupon", s.requireRole(usecase.RoleStoreAdmin), s.handleCouponCreate)
	coupon.POST("/apply", s.handleCouponApply)
	coupon.GET("/getcoupons", s.handleCouponList)
	coupon.DELETE("/deleteCoupon/:couponId", s.requireRole(usecase.RoleStoreAdmin), s.handleCouponDelete)

	order := auth.Group("/order")
	order.POST("/createOrder", s.handleCreateOrder)
	order.GET("/getOrders/:role", s.handleListOrders)
	order.GET("/getOrder/:id", s.handleGetOrder)
	order.PUT("/status/:id", s.handleUpdateStatus)
	order.POST("/return/:orderId", s.handleFileReturn)
	order.PUT("/return/:orderId", s.requireRole(usecase.RoleStoreAdmin), s.handleResolveReturn)
	order.GET("/transactions", s.requireRole(usecase.RoleStoreAdmin), s.handleTransactions)

	subs := auth.Group("/subscriptions")
	subs.POST("/createSubscription", s.handleCreateSubscription)
	subs.POST("/renewSubscription", s.handleRenewSubscription)
	subs.POST("/rescheduleSubscription", s.handleRescheduleSubscription)
	subs.GET("/getCustomerSubscriptions", s.handleListSubscriptions)
	subs.GET("/getCustomerOrdersBySubscriptionId/:subscriptionId", s.handleOrdersBySubscription)
	subs.GET("/getNextNDaysSubscriptions", s.requireRole(usecase.RoleStoreAdmin), s.handleUpcomingSubscriptions)

	payments := auth.Group("/payments")
	payments.POST("/refund/:orderId", s.requireRole(usecase.RoleStoreAdmin), s.handleRefund)
	payments.GET("/refundStatus/:orderId", s.handleRefundStatus)
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		}).Debug("request")
	}
}
