package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aplose/erp-migrate/pkg/bootstrap"
	"github.com/aplose/erp-migrate/pkg/common/config"
	"github.com/aplose/erp-migrate/pkg/common/database"
	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/common/middleware"
	"github.com/aplose/erp-migrate/pkg/importer"
	"github.com/aplose/erp-migrate/pkg/observability/metrics"
	"github.com/gorilla/mux"
)

func main() {
	envErr := config.LoadDotEnv()
	logger.Init("import-service")
	if envErr != nil {
		logger.Log.Debug("no .env file, using process environment")
	}
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres()
	defer database.CloseRedis()

	if err := bootstrap.Migrate(db); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate import tables")
	}

	pipeline, err := bootstrap.Build(cfg, db)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to build import pipeline")
	}
	defer pipeline.Close()

	handler := importer.NewHandler(importer.HandlerDeps{
		Runner:       pipeline.Orchestrator,
		Runs:         pipeline.Ledger,
		Staging:      pipeline.Staging,
		Mappings:     pipeline.Mappings,
		Dictionaries: pipeline.Dictionaries,
		Queue:        pipeline.Queue(cfg),
		RunTimeout:   cfg.ImportRunTimeout,
	})

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1/tenants/{tenant}").Subrouter()
	api.Use(
		middleware.Tenant,
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		middleware.BodyLimit(cfg.MaxRequestBody),
	)
	handler.Register(api)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Import service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start import service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down import service...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Import service forced to shutdown")
	}
	logger.Log.Info("Import service stopped")
}
