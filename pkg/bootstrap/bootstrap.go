// Package bootstrap wires the import pipeline from configuration for the
// service and worker binaries.
package bootstrap

import (
	"fmt"
	"time"

	"github.com/aplose/erp-migrate/pkg/common/config"
	"github.com/aplose/erp-migrate/pkg/common/database"
	"github.com/aplose/erp-migrate/pkg/common/httpclient"
	"github.com/aplose/erp-migrate/pkg/common/kafka"
	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/aplose/erp-migrate/pkg/dictionary"
	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/importer"
	"github.com/aplose/erp-migrate/pkg/importrun"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/aplose/erp-migrate/pkg/mapping"
	"github.com/aplose/erp-migrate/pkg/staging"
	"gorm.io/gorm"
)

type Pipeline struct {
	Ledger       *importrun.Ledger
	Staging      *staging.Repository
	Mappings     *mapping.Repository
	Dictionaries *dictionary.Repository
	Orchestrator *importer.Orchestrator

	closers []func() error
}

// Close releases the Kafka writers opened by Build.
func (p *Pipeline) Close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			logger.Log.WithError(err).Warn("failed to close pipeline resource")
		}
	}
}

type migrator interface {
	AutoMigrate() error
}

// Migrate creates or updates every table the pipeline writes.
func Migrate(db *gorm.DB) error {
	repos := []struct {
		name string
		repo migrator
	}{
		{"import run", importrun.NewRepository(db)},
		{"mapping", mapping.NewRepository(db)},
		{"staging", staging.NewRepository(db)},
		{"dictionary", dictionary.NewRepository(db)},
		{"erp", erp.NewRepository(db)},
	}
	for _, r := range repos {
		if err := r.repo.AutoMigrate(); err != nil {
			return fmt.Errorf("migrating %s tables: %w", r.name, err)
		}
	}
	return nil
}

// Build assembles the orchestrator and its stores. The tenant lock uses Redis
// when enabled and reachable, and an in-process lock otherwise. Lifecycle
// events are published only when an event topic is configured.
func Build(cfg *config.Config, db *gorm.DB) (*Pipeline, error) {
	profile, err := importer.LoadProfile(cfg.ImportProfilePath)
	if err != nil {
		return nil, fmt.Errorf("loading import profile: %w", err)
	}

	runs := importrun.NewRepository(db)
	stagingRepo := staging.NewRepository(db)
	mappings := mapping.NewRepository(db)
	dicts := dictionary.NewRepository(db)
	ledger := importrun.NewLedger(runs)

	im := importer.New(importer.Deps{
		Ledger:       ledger,
		Mappings:     mappings,
		Dictionaries: dictionary.NewService(dicts),
		Targets:      erp.NewRepository(db),
		Staging:      stagingRepo,
		Profile:      profile,
	})

	factory := importer.LegacyClientFactory(func() *legacy.Client {
		return legacy.NewClient(httpclient.New(cfg.LegacyConnectTimeout, cfg.LegacyReadTimeout))
	})

	p := &Pipeline{Ledger: ledger, Staging: stagingRepo, Mappings: mappings, Dictionaries: dicts}
	opts := []importer.OrchestratorOption{importer.WithLocker(newLocker(cfg))}
	if cfg.ImportEventTopic != "" {
		producer := kafka.NewProducer(cfg.ImportEventTopic)
		p.closers = append(p.closers, producer.Close)
		opts = append(opts, importer.WithNotifier(importer.NewEventNotifier(producer)))
	}
	p.Orchestrator = importer.NewOrchestrator(ledger, im, factory, opts...)
	return p, nil
}

func newLocker(cfg *config.Config) importer.Locker {
	if !cfg.ImportLockEnabled {
		return importer.NewLocalLocker()
	}
	client, err := database.GetRedis()
	if err != nil {
		logger.Log.WithError(err).Warn("redis unavailable, import lock is local to this process")
		return importer.NewLocalLocker()
	}
	return importer.NewRedisLocker(client, lockTTL(cfg))
}

// lockTTL keeps the tenant lock alive for at least as long as a run may last.
func lockTTL(cfg *config.Config) time.Duration {
	if floor := cfg.ImportRunTimeout + time.Minute; cfg.ImportRunTimeout > 0 && cfg.ImportLockTTL < floor {
		return floor
	}
	return cfg.ImportLockTTL
}

// Queue returns the request-topic queue, or nil when no topic is set.
func (p *Pipeline) Queue(cfg *config.Config) importer.Queue {
	if cfg.ImportRequestTopic == "" {
		return nil
	}
	producer := kafka.NewProducer(cfg.ImportRequestTopic)
	p.closers = append(p.closers, producer.Close)
	return importer.NewEventQueue(producer)
}
