package database

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/aplose/erp-migrate/pkg/common/config"
	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisErr    error
	redisOnce   sync.Once
)

func redisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		ClientName:   "erp-migrate",
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
}

// GetRedis returns the shared client used for the tenant import lock. The
// error reports the initial ping; callers that can run without Redis may
// fall back instead of failing.
func GetRedis() (*redis.Client, error) {
	redisOnce.Do(func() {
		opts := redisOptions(config.Load())
		redisClient = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisErr = fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
			logger.Log.WithError(err).WithField("addr", opts.Addr).Error("Failed to connect to Redis")
			return
		}
		logger.Log.WithField("addr", opts.Addr).Info("Connected to Redis")
	})

	return redisClient, redisErr
}

// CloseRedis is safe to call when GetRedis was never used.
func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
