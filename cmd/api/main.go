package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"valuemap/internal/config"
	"valuemap/internal/database"
	"valuemap/internal/handlers"
	"valuemap/internal/logger"
	"valuemap/internal/metrics"
	"valuemap/internal/middleware"
	"valuemap/internal/provider"
	"valuemap/internal/services"
	"valuemap/internal/validator"

	_ "valuemap/internal/docs" // Import swagger docs
)

// @title           ValueMap API
// @version         1.0
// @description     ValueMap values index constituents by price-to-cash-flow and serves treemap-ready data for KOSPI 200, S&P 500, Nasdaq 100, Nikkei 225 and Euro Stoxx 50.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Pipeline API key.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	log := logger.Get()

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	reg := metrics.NewRegistry()
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	lister := provider.NewWikipediaLister(httpClient, reg)
	yahoo := provider.NewYahooProvider(httpClient, provider.YahooOptions{
		RequestsPerSecond: cfg.FetchRPS,
		Concurrency:       cfg.FetchConcurrency,
		Metrics:           reg,
	})

	marketService := services.NewMarketService(dbManager.DB(), lister, yahoo, services.MarketServiceOptions{
		SnapshotTTL: cfg.SnapshotTTL,
		Valuation:   cfg.Valuation,
		Metrics:     reg,
	})
	marketHandler := handlers.NewMarketHandler(marketService, cfg.DefaultLimit)

	if cfg.RefreshCron != "" {
		scheduler := services.NewScheduler(marketService, cfg.DefaultLimit, 30*time.Minute)
		if err := scheduler.Start(cfg.RefreshCron); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.HTTPMetrics(reg))
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", gin.WrapH(reg.Handler()))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	markets := v1.Group("/markets")
	markets.GET("", marketHandler.ListMarkets)
	markets.GET("/:market", marketHandler.GetMarket)
	markets.GET("/:market/records", marketHandler.ListRecords)
	markets.GET("/:market/treemap", marketHandler.GetTreemap)
	markets.GET("/:market/summary", marketHandler.GetSummary)
	markets.GET("/:market/picks", marketHandler.GetStrongPicks)
	markets.GET("/:market/portfolio", marketHandler.GetPortfolio)
	markets.GET("/:market/snapshots", marketHandler.ListSnapshots)

	v1.GET("/securities/search", marketHandler.SearchSecurity)

	// Pipeline routes
	pipeline := router.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	pipeline.POST("/markets/:market/refresh", marketHandler.RefreshMarket)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting ValueMap server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
