package monitoring

import (
	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/internal/log"
	"gorm.io/gorm"
)

// Dependencies are the components the health check reports on. Any may be nil
// except Logger.
type Dependencies struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Cache    Cache
	Store    Store
	Sessions SessionCounter
}

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	deps Dependencies
}

func NewMonitoringControllerFactory(deps Dependencies) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{deps: deps}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.deps)
}
