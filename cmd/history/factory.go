package history

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/lingopad/internal/app"
	"github.com/Taichi-iskw/lingopad/internal/config"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

// ServiceFactory creates history service instances
type ServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// CreateService opens the configured store. A SQLite store is migrated on open
// since it lives next to the config file; PostgreSQL needs 'lingopad migrate up'.
func (f *ServiceFactory) CreateService(ctx context.Context) (history.Service, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := cfg.ParseDatabaseConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	return app.NewHistory(ctx, cfg, app.StoreOptions{Migrate: dbConfig.IsSQLite()})
}

// resolveService returns the injected service, or a real one with its cleanup
func resolveService(ctx context.Context, service history.Service) (history.Service, func(), error) {
	if service != nil {
		return service, func() {}, nil
	}

	svc, cleanup, err := NewServiceFactory().CreateService(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create history service: %w", err)
	}
	return svc, cleanup, nil
}
