package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/storefrontlabs/storefront-backend/api/routes"
	cartsvc "github.com/storefrontlabs/storefront-backend/internal/cart"
	categorysvc "github.com/storefrontlabs/storefront-backend/internal/categories"
	chatsvc "github.com/storefrontlabs/storefront-backend/internal/chat"
	checkoutsvc "github.com/storefrontlabs/storefront-backend/internal/checkout"
	couponsvc "github.com/storefrontlabs/storefront-backend/internal/coupons"
	coursesvc "github.com/storefrontlabs/storefront-backend/internal/courses"
	ordersvc "github.com/storefrontlabs/storefront-backend/internal/orders"
	productsvc "github.com/storefrontlabs/storefront-backend/internal/products"
	wishlistsvc "github.com/storefrontlabs/storefront-backend/internal/wishlist"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/metrics"
	"github.com/storefrontlabs/storefront-backend/pkg/migrate"
	"github.com/storefrontlabs/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	productRepo := productsvc.NewRepository(dbClient.DB())
	categoryRepo := categorysvc.NewRepository(dbClient.DB())
	couponRepo := couponsvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	wishlistRepo := wishlistsvc.NewRepository(dbClient.DB())
	orderRepo := ordersvc.NewRepository(dbClient.DB())
	courseRepo := coursesvc.NewRepository(dbClient.DB())

	productService, err := productsvc.NewService(productRepo, logg)
	exitOnServiceError(logg, "products", err)

	categoryService, err := categorysvc.NewService(categoryRepo)
	exitOnServiceError(logg, "categories", err)

	couponService, err := couponsvc.NewService(
		couponRepo,
		couponsvc.NewCache(redisClient, cfg.Checkout.CouponCacheTTL),
		logg,
	)
	exitOnServiceError(logg, "coupons", err)

	cartService, err := cartsvc.NewService(cartRepo, productRepo)
	exitOnServiceError(logg, "cart", err)

	wishlistService, err := wishlistsvc.NewService(wishlistRepo, productRepo)
	exitOnServiceError(logg, "wishlist", err)

	orderService, err := ordersvc.NewService(orderRepo)
	exitOnServiceError(logg, "orders", err)

	courseService, err := coursesvc.NewService(courseRepo)
	exitOnServiceError(logg, "courses", err)

	checkoutService, err := checkoutsvc.NewService(
		cartRepo,
		couponService,
		orderRepo,
		productRepo,
		courseService,
		dbClient,
		logg,
	)
	exitOnServiceError(logg, "checkout", err)

	var chatService chatsvc.Service
	if cfg.Chat.APIKey != "" {
		generator, genErr := chatsvc.NewGenerator(context.Background(), cfg.Chat)
		exitOnServiceError(logg, "chat generator", genErr)
		chatService, err = chatsvc.NewService(cfg.Chat, generator, logg)
		exitOnServiceError(logg, "chat", err)
	} else {
		logg.Warn(context.Background(), "gemini api key not set, chat endpoint disabled")
	}

	handler := routes.NewRouter(cfg, logg, httpMetrics, registry, dbClient, redisClient, routes.Services{
		Products:   productService,
		Categories: categoryService,
		Coupons:    couponService,
		Cart:       cartService,
		Wishlist:   wishlistService,
		Checkout:   checkoutService,
		Orders:     orderService,
		Courses:    courseService,
		Chat:       chatService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error draining api server", err)
		}
	}
}

func exitOnServiceError(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
