// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/smartsvg/internal/artifacts"
	"github.com/thatcatcamp/smartsvg/internal/config"
	"github.com/thatcatcamp/smartsvg/internal/db"
	"github.com/thatcatcamp/smartsvg/internal/logging"
	"github.com/thatcatcamp/smartsvg/internal/manipulation"
	"gorm.io/gorm"
)

// setup loads the config and builds the process logger
func setup() (zerolog.Logger, error) {
	if err := initConfig(); err != nil {
		return zerolog.Nop(), err
	}
	return logging.New(os.Stderr, config.GetString("log.level"), config.GetBool("log.console"))
}

// openDB opens the configured database, creating the sqlite directory
func openDB() (*gorm.DB, error) {
	dbType := config.GetString("database.type")
	dsn := config.GetString("database.path")
	if dbType == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return db.Open(dbType, dsn)
}

// newService returns the local engine when offline and the remote client
// otherwise. reg may be nil.
func newService(logger zerolog.Logger, reg prometheus.Registerer, offline bool) manipulation.Service {
	if offline {
		logger.Info().Msg("using the local manipulation engine")
		return manipulation.NewLocal()
	}

	var metrics *manipulation.Metrics
	if reg != nil {
		metrics = manipulation.NewMetrics(reg)
	}
	log := logging.Component(logger, "manipulation")
	return manipulation.NewClient(manipulation.ClientOptions{
		BaseURL:    config.GetString("service.base_url"),
		HTTPClient: &http.Client{Timeout: config.GetDuration("service.timeout")},
		Tokens:     manipulation.StaticToken(config.GetString("service.access_token")),
		OnUnauthorized: func() {
			log.Warn().Msg("service rejected the access token; set service.access_token")
		},
		Metrics: metrics,
		Logger:  log,
	})
}

// newStore opens the configured artifact store
func newStore(ctx context.Context) (artifacts.Store, error) {
	switch storageType := config.GetString("storage.type"); storageType {
	case "local":
		return artifacts.NewLocalStore(config.GetString("storage.artifacts_dir"))
	case "s3":
		return artifacts.NewS3Store(ctx, config.GetString("storage.s3_bucket"), config.GetString("storage.s3_region"))
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
