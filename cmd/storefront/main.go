package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/tracing"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Otel)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, productRepo, orderRepo, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessionStore := cache.NewRedisCache(redisClient, &cfg.Cache)
	defer sessionStore.Close()

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	delivery := pricing.DeliveryRule{
		HomeCity:    cfg.Delivery.HomeCity,
		InsideRate:  decimal.NewFromFloat(cfg.Delivery.InsideRate),
		OutsideRate: decimal.NewFromFloat(cfg.Delivery.OutsideRate),
	}

	validate := validator.New()
	emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	var notifier service.OrderNotifier
	if cfg.SendGrid.APIKey != "" {
		notifier = service.NewNotificationService(emailService, cfg.SendGrid.AdminEmail)
	}

	productService := service.NewProductService(productRepo, sessionStore, cfg.Cache.DefaultTTL)
	cartService := service.NewCartService(productService, sessionStore, cfg.Session.CartTTL)
	orderService := service.NewOrderService(orderRepo, notifier, validate, delivery, service.OrderIDStrategy(cfg.Checkout.OrderIDStrategy))
	checkoutService := service.NewCheckoutService(cartService, sessionStore, orderService,
		repository.NewRateLimitRepo(redisClient, cfg.RateConfig), validate, service.CheckoutConfig{
			Delivery:       delivery,
			DefaultAdvance: decimal.NewFromFloat(cfg.Checkout.DefaultAdvance),
			SubmitTimeout:  cfg.Checkout.SubmitTimeout,
			FormTTL:        cfg.Session.FormTTL,
		})

	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService, validate)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, validate)
	orderHandler := handlers.NewOrderHandler(orderService, validate)

	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))
	session := middleware.NewSession(cfg.Session.CookieName, cfg.Session.CartTTL, cfg.Env == "production")

	withSession := func(h http.HandlerFunc) http.Handler { return session.Handle(h) }

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", health.Version))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	routerMux.Handle("GET /api/v1/cart", withSession(cartHandler.GetCart()))
	routerMux.Handle("DELETE /api/v1/cart", withSession(cartHandler.ClearCart()))
	routerMux.Handle("GET /api/v1/cart/items/{productId}", withSession(cartHandler.GetItem()))
	routerMux.Handle("POST /api/v1/cart/items", withSession(cartHandler.AddItem()))
	routerMux.Handle("PUT /api/v1/cart/items", withSession(cartHandler.UpdateQuantity()))
	routerMux.Handle("POST /api/v1/cart/items/increment", withSession(cartHandler.IncrementItem()))
	routerMux.Handle("POST /api/v1/cart/items/decrement", withSession(cartHandler.DecrementItem()))
	routerMux.Handle("DELETE /api/v1/cart/items/{productId}", withSession(cartHandler.RemoveItem()))
	routerMux.Handle("GET /api/v1/checkout/form", withSession(checkoutHandler.GetForm()))
	routerMux.Handle("PUT /api/v1/checkout/form", withSession(checkoutHandler.SaveForm()))
	routerMux.Handle("POST /api/v1/checkout/quote", withSession(checkoutHandler.Quote()))
	routerMux.Handle("POST /api/v1/checkout", withSession(checkoutHandler.PlaceOrder()))
	routerMux.Handle("GET /api/v1/orders/{orderId}", withSession(orderHandler.GetSessionOrder()))
	routerMux.HandleFunc("GET /api/v1/admin/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/admin/orders/{orderId}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{orderId}/status", authMiddleware.Authenticate(orderHandler.UpdateOrderStatus()))
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "storefront")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracer shutdown failed", slog.String("error", err.Error()))
	}
}
