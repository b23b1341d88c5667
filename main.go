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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tadweer/tadweer-site/config"
	"github.com/tadweer/tadweer-site/handlers"
	"github.com/tadweer/tadweer-site/logger"
	"github.com/tadweer/tadweer-site/router"
	"github.com/tadweer/tadweer-site/services"
	"github.com/tadweer/tadweer-site/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	suggestionStore := store.NewInstrumentedStore(
		store.Open(ctx, cfg),
		store.NewStoreMetrics(prometheus.DefaultRegisterer),
	)

	var notifier services.Notifier
	if cfg.Notify.Enabled {
		notifier = services.NewEmailNotifier(&cfg.Notify, prometheus.DefaultRegisterer)
	}

	suggestionService := services.NewSuggestionService(suggestionStore, cfg.Server.AdminKey, notifier, prometheus.DefaultRegisterer)
	healthService := services.NewHealthService(suggestionStore, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:            cfg,
		SuggestionHandler: handlers.NewSuggestionHandler(suggestionService),
		HealthHandler:     handlers.NewHealthHandler(healthService),
		Logger:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Infow("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"storage", suggestionStore.Type(),
			"adminEnabled", cfg.AdminEnabled(),
			"notifications", cfg.Notify.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	suggestionService.Wait()
	log.Info("Server stopped")
}
