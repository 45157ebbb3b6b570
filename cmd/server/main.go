package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/shopbill/backend/internal/application/billing"
	inventoryapp "github.com/shopbill/backend/internal/application/inventory"
	partnerapp "github.com/shopbill/backend/internal/application/partner"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/infrastructure/auth"
	"github.com/shopbill/backend/internal/infrastructure/cache"
	"github.com/shopbill/backend/internal/infrastructure/config"
	"github.com/shopbill/backend/internal/infrastructure/event"
	"github.com/shopbill/backend/internal/infrastructure/logger"
	"github.com/shopbill/backend/internal/infrastructure/metrics"
	"github.com/shopbill/backend/internal/infrastructure/persistence"
	"github.com/shopbill/backend/internal/infrastructure/telemetry"
	"github.com/shopbill/backend/internal/interfaces/http/handler"
	"github.com/shopbill/backend/internal/interfaces/http/middleware"
	"github.com/shopbill/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting shopbill backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Failed to flush traces", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")
	if tp.IsEnabled() && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentDB(db.DB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to instrument database for tracing", zap.Error(err))
		}
	}

	// Metrics
	metricsRegistry := metrics.NewRegistry()
	if err := metricsRegistry.RegisterDB(db.SQL(), cfg.Database.DBName); err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}
	httpMetrics := metrics.NewHTTPMetrics(metricsRegistry.Registerer())
	businessMetrics := metrics.NewBusinessMetrics(metricsRegistry.Registerer())

	// Idempotency store, shared by the payment guard and the alert handler
	storeCtx, storeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore(storeCtx)
	storeCancel()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	inventoryScope := persistence.NewGormTransactionScope(db.DB)
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	lowStockHandler := event.NewIdempotentHandler(
		inventoryapp.NewLowStockAlertHandler(inventoryapp.NewLogStockAlertNotifier(log), log),
		idempotencyStore, log,
		event.WithKeyFunc(event.LowStockAlertKey),
		event.WithTTL(36*time.Hour),
	)
	invoiceActivity := event.NewInvoiceActivityHandler(log)
	eventBus.Subscribe(lowStockHandler, lowStockHandler.EventTypes()...)
	eventBus.Subscribe(invoiceActivity, invoiceActivity.EventTypes()...)
	eventBus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	clock := shared.SystemClock{}
	productService := inventoryapp.NewProductService(inventoryScope, productRepo, categoryRepo, invoiceRepo, log)
	productService.SetEventPublisher(eventBus)
	productService.SetDefaults(inventoryapp.ProductDefaults{
		TaxRate:           cfg.Billing.DefaultTaxRate,
		LowStockThreshold: int64(cfg.Billing.DefaultLowStockThreshold),
	})
	stockService := inventoryapp.NewStockService(inventoryScope, productRepo, movementRepo, log)
	stockService.SetEventPublisher(eventBus)
	categoryService := inventoryapp.NewCategoryService(categoryRepo, productRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo, invoiceRepo, log)
	invoiceService := billingapp.NewInvoiceService(billingScope, invoiceRepo, clock, log)
	invoiceService.SetEventPublisher(eventBus)
	invoiceService.SetDefaultDueDays(cfg.Billing.DefaultDueDays)
	invoiceService.SetDefaultTaxRate(cfg.Billing.DefaultTaxRate)
	paymentService := billingapp.NewPaymentService(billingScope, invoiceRepo, paymentRepo, clock, log)
	paymentService.SetEventPublisher(eventBus)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if tp.IsEnabled() {
		engine.Use(middleware.Tracing(cfg.App.Name))
	}
	engine.Use(
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Metrics(httpMetrics),
	)

	apiMiddleware := []gin.HandlerFunc{
		middleware.Auth(middleware.AuthConfig{
			Authenticator:       auth.NewJWTService(cfg.JWT),
			AllowHeaderFallback: !cfg.App.IsProduction(),
			Logger:              log,
		}),
		middleware.TraceAttributes(),
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		defer limiter.Stop()
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter))
	}

	var idempotency gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		idempotency = middleware.Idempotency(middleware.IdempotencyConfig{
			Store: idempotencyStore,
			TTL:   cfg.Idempotency.TTL,
			Scope: "payments",
		})
	}

	healthHandler := handler.NewHealthHandler(cfg.App.Name, version, db)
	healthHandler.SetCurrency(cfg.Billing.Currency)

	r := router.NewRouter(engine, router.WithAPIMiddleware(apiMiddleware...))
	router.RegisterAPI(engine, r, router.Handlers{
		Product:  handler.NewProductHandler(productService),
		Stock:    handler.NewStockHandler(stockService),
		Category: handler.NewCategoryHandler(categoryService),
		Customer: handler.NewCustomerHandler(customerService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Payment:  handler.NewPaymentHandler(paymentService),
		Health:   healthHandler,
	}, router.RouteConfig{
		Idempotency: idempotency,
		Metrics:     metricsRegistry.Handler(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
