// Package app wires configuration into the services shared by the CLI,
// the HTTP server and the Lambda entry point.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Taichi-iskw/lingopad/internal/config"
	"github.com/Taichi-iskw/lingopad/internal/language"
	translationRepo "github.com/Taichi-iskw/lingopad/internal/repository/translation"
	"github.com/Taichi-iskw/lingopad/internal/service/common"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
	"github.com/Taichi-iskw/lingopad/internal/service/provider"
	"github.com/Taichi-iskw/lingopad/internal/service/translation"
)

// NewLogger builds the process logger from configuration
func NewLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
	return log
}

// NewOrchestrator creates the provider chain: local model, hosted inference, cloud
func NewOrchestrator(cfg *config.Config, log logrus.FieldLogger) *translation.Orchestrator {
	providers := []provider.Provider{
		provider.NewLocal(common.NewCmdRunner(), provider.LocalConfig{
			Command: cfg.Translation.LocalCommand,
			Model:   cfg.Translation.LocalModel,
			Device:  cfg.Translation.LocalDevice,
		}, log),
		provider.NewHosted(provider.HostedConfig{
			BaseURL: cfg.HuggingFace.BaseURL,
			Token:   cfg.HuggingFace.Token,
			Model:   cfg.HuggingFace.Model,
			Timeout: cfg.Translation.ProviderTimeout,
		}, language.Default(), log),
		provider.NewCloud(provider.CloudConfig{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
		}, log),
	}

	return translation.NewOrchestrator(translation.Config{
		DisableLocal:    cfg.Translation.DisableLocal,
		ProviderTimeout: cfg.Translation.ProviderTimeout,
	}, providers, log)
}

// StoreOptions controls how the record store is opened
type StoreOptions struct {
	// Migrate applies pending migrations before returning
	Migrate bool
}

// OpenStore connects to the configured backend and returns the repository with its cleanup
func OpenStore(ctx context.Context, cfg *config.Config, opts StoreOptions) (translationRepo.Repository, func(), error) {
	dbConfig, err := cfg.ParseDatabaseConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	settings := translationRepo.Settings{DefaultMethod: strings.ToLower(cfg.Translation.DefaultMethod)}

	if dbConfig.IsSQLite() {
		db, err := config.OpenSQLite(ctx, dbConfig.Path)
		if err != nil {
			return nil, nil, err
		}
		if opts.Migrate {
			if err := config.MigrateSQLite(db, config.Up); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return translationRepo.NewSQLiteRepository(db, settings), func() { db.Close() }, nil
	}

	if opts.Migrate {
		if err := config.MigratePostgres(dbConfig, config.Up); err != nil {
			return nil, nil, err
		}
	}
	pool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return translationRepo.NewPostgresRepository(pool, settings), func() { config.CloseDatabasePool(pool) }, nil
}

// NewHistory opens the store and wraps it in the history service
func NewHistory(ctx context.Context, cfg *config.Config, opts StoreOptions) (history.Service, func(), error) {
	repo, cleanup, err := OpenStore(ctx, cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	return history.NewService(repo), cleanup, nil
}
