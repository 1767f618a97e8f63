package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"smartbuy-backend/config"
	"smartbuy-backend/internal/api"
	"smartbuy-backend/internal/camera"
	"smartbuy-backend/internal/checkout"
	"smartbuy-backend/internal/db"
	"smartbuy-backend/internal/layout"
	"smartbuy-backend/internal/notification"
	"smartbuy-backend/internal/playback"
	"smartbuy-backend/internal/shopping"
	"smartbuy-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "smartbuy ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Load the store layout
	storeLayout := layout.Default()
	if cfg.Store.LayoutPath != "" {
		storeLayout, err = layout.Load(cfg.Store.LayoutPath)
		if err != nil {
			logger.Fatalf("failed to load store layout from %s: %v", cfg.Store.LayoutPath, err)
		}
	} else if err := storeLayout.Validate(); err != nil {
		logger.Fatalf("built-in store layout is invalid: %v", err)
	}
	if shared := storeLayout.SharedStopCoordinates(); len(shared) > 0 {
		logger.Printf("warning: stops at route indices %v share coordinates with other waypoints", shared)
	}
	logger.Printf("store layout loaded: %d sections, %d waypoints", len(storeLayout.Sections), len(storeLayout.Route))

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Push notifications are optional
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	var pool *notification.WorkerPool
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Println("VAPID keys are not configured; assistance requests will not notify staff")
	} else {
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions)
		pool.Start(ctx)
	}

	var cam camera.Provider
	if cfg.Camera.FrameDir != "" {
		cam = camera.NewDirProvider(cfg.Camera.FrameDir)
	}

	// Playback controller lives for the whole process
	list := shopping.NewList(storeLayout.SeedList)
	ctrl := playback.NewController(storeLayout, list, playback.OptionsFromConfig(cfg.Playback), playback.WallClock(), cam)
	go ctrl.Run(ctx)

	checkoutSvc := checkout.NewService(appStore, cfg.Checkout)

	// Initialize router
	handler := api.NewHandler(appStore, storeLayout, ctrl, checkoutSvc, pool, &webpushOptions)
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}
	cancel()
	ctrl.Close()

	logger.Println("Server gracefully stopped")
}
