package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"user-record-service/internal/config"
	redisclient "user-record-service/pkg/redis"
)

// NewRedisClient connects to Redis when the rate limiter needs it.
// It returns a nil client when rate limiting is disabled.
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}

	rdb, err := redisclient.NewClient(redisclient.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
