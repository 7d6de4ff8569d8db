package gormdb

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnProvider hands out a database connection for the duration of fn.
// The connection is released when fn returns, including when it fails or panics.
type ConnProvider interface {
	WithConn(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// pingConn pings the connection pinned to tx, falling back to a trivial query
// when the pool does not expose PingContext.
func pingConn(ctx context.Context, tx *gorm.DB) error {
	if p, ok := tx.Statement.ConnPool.(pinger); ok {
		return p.PingContext(ctx)
	}
	return tx.Exec("SELECT 1").Error
}

// PooledProvider pins one connection of a shared pool per call.
type PooledProvider struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewPooledProvider wraps an open *gorm.DB.
func NewPooledProvider(db *gorm.DB, log *zap.Logger) *PooledProvider {
	return &PooledProvider{db: db, log: log}
}

// WithConn implements ConnProvider.
func (p *PooledProvider) WithConn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.db.WithContext(ctx).Connection(fn)
}

// Ping implements ConnProvider.
func (p *PooledProvider) Ping(ctx context.Context) error {
	return p.WithConn(ctx, func(tx *gorm.DB) error {
		return pingConn(ctx, tx)
	})
}

// Close closes the shared pool.
func (p *PooledProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	p.log.Info("closing database pool")
	return sqlDB.Close()
}

// DialFunc builds a fresh dialector for every connection attempt.
type DialFunc func() gorm.Dialector

// DialProvider opens a dedicated database handle for every call and closes it
// afterwards, so no connection outlives the operation that needed it.
type DialProvider struct {
	dial   DialFunc
	logger gormlogger.Interface
	log    *zap.Logger
}

// NewDialProvider creates a DialProvider. gl may be nil to use GORM's default logger.
func NewDialProvider(dial DialFunc, gl gormlogger.Interface, log *zap.Logger) *DialProvider {
	return &DialProvider{dial: dial, logger: gl, log: log}
}

// WithConn implements ConnProvider.
func (p *DialProvider) WithConn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	// gorm's automatic ping ignores ctx; the first statement dials under it instead.
	cfg := &gorm.Config{DisableAutomaticPing: true}
	if p.logger != nil {
		cfg.Logger = p.logger
	}

	db, err := gorm.Open(p.dial(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		if c, ok := db.ConnPool.(io.Closer); ok {
			p.closeHandle(c)
		}
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	defer p.closeHandle(sqlDB)

	sqlDB.SetMaxOpenConns(1)

	return db.WithContext(ctx).Connection(fn)
}

func (p *DialProvider) closeHandle(c io.Closer) {
	if err := c.Close(); err != nil {
		p.log.Warn("failed to close connection", zap.Error(err))
	}
}

// Ping implements ConnProvider.
func (p *DialProvider) Ping(ctx context.Context) error {
	return p.WithConn(ctx, func(tx *gorm.DB) error {
		return pingConn(ctx, tx)
	})
}

// Close is a no-op: DialProvider holds nothing between calls.
func (p *DialProvider) Close() error {
	return nil
}
