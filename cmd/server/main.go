package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/app"
	"github.com/Carter-75/SnowRemovel/internal/config"
	"github.com/Carter-75/SnowRemovel/internal/handlers"
	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/middleware"
	"github.com/Carter-75/SnowRemovel/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting SnowRemovel API", map[string]interface{}{
		"version":       handlers.APIVersion,
		"environment":   cfg.Server.Env,
		"port":          cfg.Server.Port,
		"parcel_source": cfg.Parcel.Source,
	})

	if err := handlers.RegisterValidations(); err != nil {
		log.Fatal("Failed to register request validations", err, nil)
	}

	ctx := context.Background()

	engine, err := app.NewEngine(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to build estimation engine", err, nil)
	}
	defer engine.Close()

	log.Info("Route providers configured", map[string]interface{}{
		"providers":    engine.ProviderNames,
		"ors_keyed":    cfg.Routing.ORSAPIKey != "",
		"google_keyed": cfg.Routing.GoogleMapsAPIKey != "",
	})

	stores, err := app.NewStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Redis.Addr,
		})
	}
	defer stores.Close()

	// Readiness covers whichever backing stores are configured
	dependencies := map[string]handlers.Pinger{}
	if engine.ParcelDB != nil {
		dependencies["database"] = engine.ParcelDB
	}
	if stores.Redis != nil {
		dependencies["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return stores.Redis.Ping(ctx).Err()
		})
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(cfg.Server.Env, dependencies)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize service layer
	estimateService := services.NewEstimateService(engine.Pricing, stores.Anchors, engine.Clock, log)
	checkoutService := services.NewCheckoutService(engine.Pricing, stores.Anchors, engine.Clock, log)

	// Initialize handlers
	estimateHandler := handlers.NewEstimateHandler(estimateService)
	discountHandler := handlers.NewDiscountHandler(engine.Clock)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)

	estimateLimit := middleware.RateLimit("estimate", stores.RateLimits, cfg.RateLimit.EstimateLimit, cfg.RateLimit.Window, log)
	checkoutLimit := middleware.RateLimit("checkout", stores.RateLimits, cfg.RateLimit.CheckoutLimit, cfg.RateLimit.Window, log)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/estimate", estimateLimit, estimateHandler.Create)
		v1.GET("/discount", discountHandler.Status)
		v1.POST("/checkout/quote", checkoutLimit, checkoutHandler.Quote)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
