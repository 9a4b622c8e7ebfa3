package domain

import (
	"fmt"

	"github.com/onedotone/landing-api/config"
	"github.com/onedotone/landing-api/domain/demo"
	"github.com/onedotone/landing-api/domain/landing"
	"github.com/onedotone/landing-api/domain/monitoring"
	"github.com/onedotone/landing-api/domain/waitlist"
	"github.com/onedotone/landing-api/pkg/iplookup"
	"github.com/onedotone/landing-api/pkg/postgrest"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	cfg := appConfig.Config
	if cfg == nil {
		cfg = config.NewAppConfig()
	}

	lookup := &iplookup.Config{
		Endpoint: cfg.IPLookupURL,
		Timeout:  cfg.IPLookupTimeout,
		Disabled: cfg.IPLookupDisabled,
	}
	resolver := iplookup.NewCandidateResolver()

	waitlistFactory, err := waitlist.NewWaitlistServiceFactory(
		appConfig.DB,
		&waitlist.StoreConfig{
			Backend: cfg.WaitlistStore,
			REST: postgrest.Config{
				URL:     cfg.WaitlistStoreURL,
				APIKey:  cfg.WaitlistStoreKey,
				Timeout: cfg.WaitlistStoreTimeout,
			},
		},
		resolver,
		cfg.WaitlistAdminToken,
		appConfig.Logger,
	)
	if err != nil {
		return fmt.Errorf("waitlist setup: %w", err)
	}

	timings := demo.DefaultTimings()
	if cfg.DemoTypingDelay > 0 {
		timings.Typing = cfg.DemoTypingDelay
	}

	demoFactory := demo.NewDemoServiceFactory(demo.RegistryConfig{
		MaxSessions: cfg.DemoMaxSessions,
		SessionTTL:  cfg.DemoSessionTTL,
		Timings:     timings,
	}, appConfig.RouterService.MetricsRegisterer(), appConfig.Logger)
	registry := demoFactory.CreateRegistry()
	appConfig.RouterService.OnShutdown(registry.Shutdown)
	appConfig.OnCleanup(registry.Shutdown)

	monitoringFactory := monitoring.NewMonitoringControllerFactory(monitoring.Dependencies{
		DB:       appConfig.DB,
		Logger:   appConfig.Logger,
		Cache:    appConfig.Cache,
		Store:    waitlistFactory.CreateRepository(),
		Sessions: registry,
	})

	appConfig.RouterService.MountController(monitoringFactory.CreateController())
	appConfig.RouterService.MountController(waitlistFactory.CreateController())
	appConfig.RouterService.MountController(demoFactory.CreateController())
	appConfig.RouterService.MountController(landing.NewLandingController(lookup.BrowserLookup()))

	return nil
}
