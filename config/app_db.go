package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/onedotone/landing-api/internal/log"
	"github.com/onedotone/landing-api/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DBConfig sizes the pool. The waitlist sees short bursts of single-row
// inserts, so the defaults stay small.
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	SSLMode         string
}

func DBConfigFromEnv() *DBConfig {
	return &DBConfig{
		MaxIdleConns:    utils.GetEnvPositiveInt("DB_MAX_IDLE_CONNS", 5),
		MaxOpenConns:    utils.GetEnvPositiveInt("DB_MAX_OPEN_CONNS", 20),
		ConnMaxLifetime: utils.GetEnvPositiveDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: utils.GetEnvPositiveDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		PingTimeout:     utils.GetEnvPositiveDuration("DB_PING_TIMEOUT", 5*time.Second),
		SSLMode:         "require",
	}
}

// postgresEnv holds the discrete POSTGRES_* settings used when
// APP_DATABASE_URL is absent.
type postgresEnv struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func postgresEnvFromOS() postgresEnv {
	return postgresEnv{
		Host:     sanitizeEnv(utils.GetEnvOrDefault("POSTGRES_HOST", "")),
		Port:     sanitizeEnv(utils.GetEnvOrDefault("POSTGRES_PORT", "5432")),
		User:     sanitizeEnv(utils.GetEnvOrDefault("POSTGRES_USER", "")),
		Password: sanitizeEnv(utils.GetEnvOrDefault("POSTGRES_PASSWORD", "")),
		Name:     sanitizeEnv(utils.GetEnvOrDefault("POSTGRES_DB_NAME", "")),
		SSLMode:  sanitizeEnv(utils.GetEnvOrDefault("POSTGRES_SSLMODE", "")),
	}
}

func (p postgresEnv) missing() []string {
	var missing []string
	if p.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if p.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if p.Name == "" {
		missing = append(missing, "POSTGRES_DB_NAME")
	}
	return missing
}

// url renders a postgres:// DSN; credentials are escaped so passwords with
// reserved characters survive.
func (p postgresEnv) url(defaultSSL string) string {
	ssl := p.SSLMode
	if ssl == "" {
		ssl = defaultSSL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.Name,
		RawQuery: url.Values{"sslmode": {ssl}}.Encode(),
	}
	return u.String()
}

func resolveDSN(logger *log.Logger, cfg *DBConfig) (string, error) {
	if databaseURL := sanitizeEnv(utils.GetEnvOrDefault("APP_DATABASE_URL", "")); databaseURL != "" {
		logger.Info("Using APP_DATABASE_URL for database connection")
		return databaseURL, nil
	}

	env := postgresEnvFromOS()
	if missing := env.missing(); len(missing) > 0 {
		joined := strings.Join(missing, ", ")
		logger.Error("Missing required database environment variables", "missing_vars", joined)
		return "", fmt.Errorf("missing required database env vars: %s", joined)
	}

	logger.Info("Connecting to database",
		"host", env.Host,
		"port", env.Port,
		"user", env.User,
		"dbname", env.Name,
	)
	return env.url(cfg.SSLMode), nil
}

func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		cfg = DBConfigFromEnv()
	}

	dsn, err := resolveDSN(logger, cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		logger.Warn("Database ping failed", "error", err)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established", "max_open_conns", cfg.MaxOpenConns)
	return gdb, nil
}

func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	return s
}

// AutoMigrate is the development shortcut behind --auto-migrate; deployed
// environments use the versioned SQL migrations instead.
func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...interface{}) error {
	if db == nil {
		return fmt.Errorf("cannot auto-migrate: no database connection")
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Database auto-migration failed", "error", err)
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	logger.Info("Database auto-migration completed", "models", len(models))
	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
		return
	}
	logger.Info("Database closed")
}
