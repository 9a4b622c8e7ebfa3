package waitlist

import (
	"fmt"

	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/internal/log"
	"github.com/onedotone/landing-api/pkg/iplookup"
	"github.com/onedotone/landing-api/pkg/postgrest"
	"gorm.io/gorm"
)

// Store backends selectable through WAITLIST_STORE.
const (
	StorePostgres = "postgres"
	StoreREST     = "rest"
)

type StoreConfig struct {
	Backend string
	REST    postgrest.Config
}

type WaitlistServiceFactory interface {
	CreateRepository() WaitlistRepository
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	repository WaitlistRepository
	resolver   iplookup.Resolver
	adminToken string
	logger     *log.Logger
}

// NewWaitlistServiceFactory validates the store configuration up front: a REST
// store without endpoint or key, or a postgres store without a database, is an error.
func NewWaitlistServiceFactory(
	db *gorm.DB,
	storeCfg *StoreConfig,
	resolver iplookup.Resolver,
	adminToken string,
	logger *log.Logger,
) (WaitlistServiceFactory, error) {
	repository, err := newRepository(db, storeCfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Waitlist store configured", "backend", storeCfg.Backend)

	return &DefaultWaitlistServiceFactory{
		repository: repository,
		resolver:   resolver,
		adminToken: adminToken,
		logger:     logger,
	}, nil
}

func newRepository(db *gorm.DB, storeCfg *StoreConfig) (WaitlistRepository, error) {
	if storeCfg == nil {
		storeCfg = &StoreConfig{Backend: StorePostgres}
	}

	switch storeCfg.Backend {
	case StorePostgres, "":
		if db == nil {
			return nil, fmt.Errorf("waitlist store %q requires a database connection", StorePostgres)
		}
		return NewWaitlistRepository(db), nil
	case StoreREST:
		return NewRESTWaitlistRepositoryFromConfig(&storeCfg.REST)
	default:
		return nil, fmt.Errorf("unknown waitlist store %q (expected %q or %q)", storeCfg.Backend, StorePostgres, StoreREST)
	}
}

func (f *DefaultWaitlistServiceFactory) CreateRepository() WaitlistRepository {
	return f.repository
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	return NewWaitlistService(f.logger, f.repository, f.resolver, nil)
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.repository, f.resolver, f.adminToken, f.logger)
}
