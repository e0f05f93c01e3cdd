package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aplose/erp-migrate/pkg/bootstrap"
	"github.com/aplose/erp-migrate/pkg/common/config"
	"github.com/aplose/erp-migrate/pkg/common/database"
	"github.com/aplose/erp-migrate/pkg/common/kafka"
	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/common/models"
)

func main() {
	_ = config.LoadDotEnv()
	logger.Init("import-worker")
	cfg := config.Load()

	if cfg.ImportRequestTopic == "" {
		logger.Log.Fatal("LEGACY_IMPORT_REQUEST_TOPIC is required")
	}

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

	consumer := kafka.NewConsumer(cfg.ImportRequestTopic, cfg.ImportWorkerGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle := func(ctx context.Context, event models.Event) error {
		runCtx, cancelRun := context.WithTimeout(ctx, cfg.ImportRunTimeout)
		defer cancelRun()
		return pipeline.Orchestrator.HandleEvent(runCtx, event)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Log.WithField("topic", cfg.ImportRequestTopic).Info("Import worker consuming")
		if err := consumer.Consume(ctx, handle); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("Consumer error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-done:
	}

	logger.Log.Info("Shutting down import worker...")
	cancel()
	<-done
	logger.Log.Info("Import worker stopped")
}
