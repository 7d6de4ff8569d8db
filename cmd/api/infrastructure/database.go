package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"user-record-service/internal/adapter/db/gormdb"
	"user-record-service/internal/config"
	"user-record-service/pkg/logger"
)

// NewDialector returns the GORM dialector for the configured driver.
func NewDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	dsn := cfg.DSN()
	switch cfg.Driver {
	case config.DriverMySQL:
		// Skipping the version probe keeps gorm.Open from touching the server.
		return mysql.New(mysql.Config{DSN: dsn, SkipInitializeWithVersion: true}), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewConnProvider creates the connection provider selected by DB_CONN_MODE.
// Nothing is dialed for per_request mode until the first operation.
func NewConnProvider(cfg *config.Config, l *zap.Logger) (gormdb.ConnProvider, error) {
	dialector, err := NewDialector(&cfg.DB)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	if cfg.DB.ConnMode == config.ConnModePerRequest {
		l.Info("database connections opened per request", zap.String("driver", cfg.DB.Driver))
		return gormdb.NewDialProvider(func() gorm.Dialector {
			// driver already validated above
			d, _ := NewDialector(&cfg.DB)
			return d
		}, gormLogger, l), nil
	}

	// The database may come up after the service; GET / reports it until then.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               gormLogger,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetimeSeconds) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DB.ConnMaxIdleTimeSeconds) * time.Second)

	l.Info("database pool configured",
		zap.String("driver", cfg.DB.Driver),
		zap.Int("max_open_conns", cfg.DB.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.DB.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.DB.ConnMaxLifetimeSeconds),
		zap.Int("conn_max_idle_time_seconds", cfg.DB.ConnMaxIdleTimeSeconds),
	)

	return gormdb.NewPooledProvider(db, l), nil
}

// InitSchema makes sure the users table exists. Failures are logged and
// startup continues; requests then surface the storage error themselves.
func InitSchema(ctx context.Context, cfg *config.Config, conns gormdb.ConnProvider, l *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DB.PingTimeoutSeconds)*time.Second)
	defer cancel()

	if err := gormdb.EnsureSchema(ctx, conns, l); err != nil {
		l.Error("failed to initialize users table", zap.Error(err))
	}
}
