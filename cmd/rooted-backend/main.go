package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"rooted-backend/internal/cache"
	"rooted-backend/internal/config"
	"rooted-backend/internal/docstore"
	"rooted-backend/internal/env"
	"rooted-backend/internal/infrastructure/maps"
	"rooted-backend/internal/infrastructure/msg91"
	"rooted-backend/internal/infrastructure/phonepe"
	"rooted-backend/internal/server"
	"rooted-backend/internal/usecase"
)

func main() {
	env.Load(".env", ".env.local")
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	envName := flag.String("env", cfg.Env, "")
	port := flag.Int("port", cfg.Port, "")
	logJSON := flag.Bool("log-json", cfg.LogJSON, "")
	jwtSecret := flag.String("jwt-secret", cfg.JWTSecret, "")
	mongoURI := flag.String("mongo-uri", cfg.MongoURI, "")
	inMemory := flag.Bool("in-memory", cfg.InMemoryStore, "")
	flag.Parse()

	cfg.Env = *envName
	cfg.Port = *port
	cfg.LogJSON = *logJSON
	cfg.JWTSecret = *jwtSecret
	cfg.MongoURI = *mongoURI
	cfg.InMemoryStore = *inMemory

	log := logrus.New()
	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Env == "dev" {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()

	var (
		carts     usecase.CartRepo
		catalog   usecase.CatalogRepo
		inventory usecase.InventoryRepo
		coupons   usecase.CouponRepo
		orders    usecase.OrderRepo
		subs      usecase.SubscriptionRepo
		counters  usecase.CounterRepo
		stores    usecase.StoreRepo
		customers usecase.CustomerRepo
		ledger    usecase.CallbackLedger
	)
	if cfg.InMemoryStore {
		carts = docstore.NewMemoryCartRepo()
		catalog = docstore.NewMemoryCatalogRepo()
		inventory = docstore.NewMemoryInventoryRepo()
		coupons = docstore.NewMemoryCouponRepo()
		orders = docstore.NewMemoryOrderRepo()
		subs = docstore.NewMemorySubscriptionRepo()
		counters = docstore.NewMemoryCounterRepo()
		stores = docstore.NewMemoryStoreRepo()
		customers = docstore.NewMemoryCustomerRepo()
		ledger = docstore.NewMemoryCallbackLedger()
		log.Warn("running on the in-memory store, data will not survive a restart")
	} else {
		db, err := docstore.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.WithError(err).Fatal("document store connection failed")
		}
		defer func() { _ = db.Close(context.Background()) }()
		carts = db.Carts()
		catalog = db.Catalog()
		inventory = db.Inventory()
		coupons = db.Coupons()
		orders = db.Orders()
		subs = db.Subscriptions()
		counters = db.Counters()
		stores = db.Stores()
		customers = db.Customers()
		ledger = db.Callbacks()
	}

	gateway, err := phonepe.NewClient(phonepe.Config{
		BaseURL:      cfg.PhonePeBaseURL,
		AuthURL:      cfg.PhonePeAuthURL,
		ClientID:     cfg.PhonePeClientID,
		ClientSecret: cfg.PhonePeClientSecret,
		WebhookUser:  cfg.WebhookUser,
		WebhookPass:  cfg.WebhookPass,
	})
	if err != nil {
		log.WithError(err).Fatal("payment gateway config invalid")
	}
	sms := &msg91.Client{AuthKey: cfg.MSG91AuthKey, TemplateID: cfg.MSG91TemplateID}
	var quoter usecase.DistanceQuoter
	if cfg.MapsAPIKey != "" {
		quoter = &maps.Client{APIKey: cfg.MapsAPIKey}
	}

	pricing := &usecase.PricingService{Carts: carts, Catalog: catalog, Inventory: inventory}
	couponSvc := &usecase.CouponService{Coupons: coupons, Log: log}
	sequencer := &usecase.OrderSequencer{Counters: counters}
	inventorySvc := &usecase.InventoryService{Inventory: inventory, Log: log}
	orderSvc := &usecase.OrderService{
		Orders:    orders,
		Stores:    stores,
		Customers: customers,
		Carts:     carts,
		Pricing:   pricing,
		Coupons:   couponSvc,
		Sequencer: sequencer,
		Gateway:   gateway,
		Quoter:    quoter,
		Counts:    cache.New[string, int64](5 * time.Minute),
		Log:       log,
	}
	cartSvc := &usecase.CartService{Carts: carts, Inventory: inventory, Pricing: pricing}
	subSvc := &usecase.SubscriptionService{
		Subs:      subs,
		Orders:    orders,
		Stores:    stores,
		Customers: customers,
		Pricing:   pricing,
		Coupons:   couponSvc,
		OrderSvc:  orderSvc,
		Gateway:   gateway,
		Log:       log,
	}
	webhookSvc := &usecase.WebhookService{
		Orders:    orders,
		Subs:      subs,
		Carts:     cartSvc,
		Inventory: inventorySvc,
		OrderSvc:  orderSvc,
		Ledger:    ledger,
		Notify:    sms,
		AuthHash:  gateway.WebhookAuthHash(),
		Log:       log,
	}

	srv := server.New(cfg, log, server.Services{
		Carts:         cartSvc,
		Coupons:       couponSvc,
		Orders:        orderSvc,
		Subscriptions: subSvc,
		Webhooks:      webhookSvc,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
