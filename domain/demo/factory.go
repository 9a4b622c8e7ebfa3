package demo

import (
	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/internal/log"
	"github.com/prometheus/client_golang/prometheus"
)

type DemoServiceFactory interface {
	CreateRegistry() *Registry
	CreateController() *router.RESTController
}

type DefaultDemoServiceFactory struct {
	registry *Registry
	logger   *log.Logger
}

// NewDemoServiceFactory owns one registry for the process; call Shutdown on
// the registry when the server stops.
func NewDemoServiceFactory(cfg RegistryConfig, reg prometheus.Registerer, logger *log.Logger) DemoServiceFactory {
	return &DefaultDemoServiceFactory{
		registry: NewRegistry(cfg, reg),
		logger:   logger,
	}
}

func (f *DefaultDemoServiceFactory) CreateRegistry() *Registry {
	return f.registry
}

func (f *DefaultDemoServiceFactory) CreateController() *router.RESTController {
	return NewDemoController(f.registry, f.logger)
}
