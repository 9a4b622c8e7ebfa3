package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/internal/log"
	"github.com/onedotone/landing-api/internal/models"
	"github.com/onedotone/landing-api/pkg/constants"
	"github.com/onedotone/landing-api/pkg/retry"
	"github.com/onedotone/landing-api/pkg/utils"
	"gorm.io/gorm"
)

// WaitlistStoreREST selects the hosted PostgREST store; the waitlist then
// needs no direct database connection.
const WaitlistStoreREST = "rest"

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	TracingShutdown func(context.Context) error

	// closers run on Cleanup before the router and stores shut down.
	closers []func()
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	WaitlistStore        string
	WaitlistStoreURL     string
	WaitlistStoreKey     string
	WaitlistStoreTimeout time.Duration
	WaitlistAdminToken   string

	IPLookupURL      string
	IPLookupTimeout  time.Duration
	IPLookupDisabled bool

	DemoTypingDelay time.Duration
	DemoMaxSessions int
	DemoSessionTTL  time.Duration
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{
		RateLimitRequests: constants.DefaultRateLimitRequests,
		RateLimitWindow:   constants.DefaultRateLimitWindow(),
		RequestTimeout:    30 * time.Second, // Default request timeout

		WaitlistStore:        "postgres",
		WaitlistStoreTimeout: 10 * time.Second,
		IPLookupTimeout:      3 * time.Second,
	}

	// Override from environment variables
	config.RateLimitRequests = utils.GetEnvPositiveInt("RATE_LIMIT_REQUESTS", config.RateLimitRequests)
	config.RateLimitWindow = utils.GetEnvPositiveDuration("RATE_LIMIT_WINDOW", config.RateLimitWindow)
	config.RequestTimeout = utils.GetEnvPositiveDuration("REQUEST_TIMEOUT", config.RequestTimeout)

	if store := strings.ToLower(sanitizeEnv(os.Getenv("WAITLIST_STORE"))); store != "" {
		config.WaitlistStore = store
	}
	config.WaitlistStoreURL = sanitizeEnv(os.Getenv("WAITLIST_STORE_URL"))
	config.WaitlistStoreKey = sanitizeEnv(os.Getenv("WAITLIST_STORE_KEY"))
	config.WaitlistStoreTimeout = utils.GetEnvPositiveDuration("WAITLIST_STORE_TIMEOUT", config.WaitlistStoreTimeout)
	config.WaitlistAdminToken = sanitizeEnv(os.Getenv("WAITLIST_ADMIN_TOKEN"))

	config.IPLookupURL = sanitizeEnv(os.Getenv("IP_LOOKUP_URL"))
	config.IPLookupTimeout = utils.GetEnvPositiveDuration("IP_LOOKUP_TIMEOUT", config.IPLookupTimeout)
	config.IPLookupDisabled = utils.GetEnvBool("IP_LOOKUP_DISABLED", false)

	config.DemoTypingDelay = utils.GetEnvPositiveDuration("DEMO_TYPING_DELAY", 0)
	config.DemoMaxSessions = utils.GetEnvPositiveInt("DEMO_MAX_SESSIONS", 0)
	config.DemoSessionTTL = utils.GetEnvPositiveDuration("DEMO_SESSION_TTL", 0)

	return config
}

// NeedsDatabase reports whether any component requires a direct Postgres connection.
func (c *AppConfig) NeedsDatabase() bool {
	return c.WaitlistStore != WaitlistStoreREST
}

// OnCleanup registers fn to run when the application shuts down.
func (ac *ApplicationConfig) OnCleanup(fn func()) {
	ac.closers = append(ac.closers, fn)
}

func (ac *ApplicationConfig) Cleanup() {
	for i := len(ac.closers) - 1; i >= 0; i-- {
		ac.closers[i]()
	}

	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	appConfig := NewAppConfig()

	tracingShutdown, err := SetupTracing(logger, GetAppEnv())
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	if appConfig.NeedsDatabase() {
		db, err = connectWithRetry(logger)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Info("Waitlist uses the REST store; skipping database connection")
	}

	if autoMigrate {
		if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
			return nil, err
		}
	}

	cache := NewCacheConfig().NewCacheOrNil(logger)

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully")

	return &ApplicationConfig{
		DB:              db,
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}

// connectWithRetry rides out a database that is still starting, as happens
// when the service and Postgres come up together.
func connectWithRetry(logger *log.Logger) (*gorm.DB, error) {
	var db *gorm.DB

	policy := retry.NewExponentialBackoff(&retry.Config{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := policy.Execute(ctx, func(context.Context) error {
		var connectErr error
		db, connectErr = NewDatabase(logger, nil)
		return connectErr
	})
	if err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	return db, nil
}
