// File: servihub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servihub/config"
	"servihub/cron"
	"servihub/handlers"
	"servihub/middleware"
	"servihub/routes"
	"servihub/services/dispatch"
	"servihub/services/poller"
	"servihub/upstream"
	"servihub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitRedis()
	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient(), utils.GetPrefsClient()})

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Upstream booking API client.
	apiClient := upstream.NewClient(config.AppConfig.UpstreamBaseURL, config.AppConfig.UpstreamTimeout)

	// Core services.
	snapshots := &poller.RedisSnapshotStore{Client: utils.GetCacheClient()}
	watchManager := poller.NewManager(
		apiClient, snapshots, logger,
		config.AppConfig.ListPollPeriod, config.AppConfig.ConfirmPollPeriod,
		config.AppConfig.InlinePayCeiling, config.AppConfig.CallbackCeiling,
	)
	dispatcher := dispatch.NewDispatcher(apiClient, logger)

	// Recheck queue: producer here, consumer in the cron worker.
	queue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRecheckQueueDB,
	})
	defer queue.Close()
	cron.InitRecheckWorker(apiClient, watchManager)

	// Handlers and routes.
	bookingHandler := handlers.NewBookingHandler(apiClient, dispatcher, watchManager, snapshots, queue)
	prefsHandler := handlers.NewPreferencesHandler(utils.GetPrefsClient())
	routes.RegisterRoutes(router, bookingHandler, prefsHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	watchManager.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
