package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"user-record-service/cmd/api/infrastructure"
	"user-record-service/internal/adapter/db/gormdb"
	ginhandler "user-record-service/internal/adapter/gin/handler"
	"user-record-service/internal/adapter/gin/middleware"
	"user-record-service/internal/config"
	"user-record-service/internal/usecase/user"
	redisclient "user-record-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Conns       gormdb.ConnProvider
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	conns, err := infrastructure.NewConnProvider(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	infrastructure.InitSchema(ctx, cfg, conns, l)

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = conns.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	repo := gormdb.NewUserRepo(conns, l)
	userUC := user.New(repo, l,
		user.WithPingTimeout(time.Duration(cfg.DB.PingTimeoutSeconds)*time.Second),
	)

	var rateLimiter *middleware.RateLimiter
	if rdb != nil {
		rateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				WindowSeconds:     cfg.RateLimit.WindowSeconds,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	return &Container{
		Config:      cfg,
		Logger:      l,
		Conns:       conns,
		RedisClient: rdb,
		UserUC:      userUC,
		RateLimiter: rateLimiter,
		GinHandler:  ginhandler.NewUserHandler(userUC, l),
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.Conns != nil {
		if err := c.Conns.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
