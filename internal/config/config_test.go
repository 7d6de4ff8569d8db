package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, "mysql", cfg.DB.Host)
	assert.Equal(t, "user", cfg.DB.User)
	assert.Equal(t, "userpassword", cfg.DB.Password)
	assert.Equal(t, "testdb", cfg.DB.Name)
	assert.Equal(t, ConnModePooled, cfg.DB.ConnMode)
	assert.Equal(t, "3000", cfg.App.HTTPPort)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.App.GRPCHealthEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "MYSQL_HOST=db.internal\nMYSQL_DATABASE=fromfile\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("MYSQL_DATABASE", "fromenv")
	t.Setenv("DB_CONN_MODE", ConnModePerRequest)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "fromenv", cfg.DB.Name)
	assert.Equal(t, ConnModePerRequest, cfg.DB.ConnMode)
}

func TestLoadConfig_ProductionLoggerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestConfig_Validate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown driver", func(c *Config) { c.DB.Driver = "oracle" }, "DB_DRIVER"},
		{"unknown conn mode", func(c *Config) { c.DB.ConnMode = "lazy" }, "DB_CONN_MODE"},
		{"empty database", func(c *Config) { c.DB.Name = "" }, "MYSQL_DATABASE"},
		{"zero ping timeout", func(c *Config) { c.DB.PingTimeoutSeconds = 0 }, "DB_PING_TIMEOUT_SECONDS"},
		{"rate limit without budget", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.RequestsPerSecond = 0
		}, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	mysqlCfg := DatabaseConfig{Driver: DriverMySQL, Host: "mysql", Port: "3306", User: "user", Password: "pw", Name: "testdb"}
	dsn := mysqlCfg.DSN()
	assert.Contains(t, dsn, "user:pw@tcp(mysql:3306)/testdb")
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "parseTime=true")

	pgCfg := DatabaseConfig{Driver: DriverPostgres, Host: "pg", Port: "5432", User: "u", Password: "p", Name: "db", SSLMode: "disable"}
	assert.Equal(t, "host=pg user=u password=p dbname=db port=5432 sslmode=disable", pgCfg.DSN())

	sqliteCfg := DatabaseConfig{Driver: DriverSQLite, Name: "/tmp/users.db"}
	assert.Equal(t, "/tmp/users.db", sqliteCfg.DSN())
}
