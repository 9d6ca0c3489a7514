package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/job-tracker/internal/config"
)

// Database is the single store connection opened at startup. Exactly one of Mongo or
// Postgres is set, according to Backend.
type Database struct {
	Backend  config.Backend
	Mongo    *Mongo
	Postgres *Postgres
}

// Connect opens the configured store. Callers treat an error as fatal.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendMongo:
		m, err := NewMongo(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Database{Backend: backend, Mongo: m}, nil
	case config.BackendPostgres:
		pg, err := NewPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Database{Backend: backend, Postgres: pg}, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}
}

// Prepare creates indexes or applies migrations, depending on the backend.
func (d *Database) Prepare(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) error {
	if !cfg.RunMigrations {
		logger.Info("schema preparation disabled")
		return nil
	}
	switch d.Backend {
	case config.BackendMongo:
		return d.Mongo.EnsureIndexes(ctx, logger)
	case config.BackendPostgres:
		return RunMigrations(ctx, d.Postgres.PoolHandle(), logger)
	}
	return nil
}

// Ping checks the active backend.
func (d *Database) Ping(ctx context.Context) error {
	if d == nil {
		return fmt.Errorf("database not connected")
	}
	if d.Mongo != nil {
		return d.Mongo.Ping(ctx)
	}
	return d.Postgres.Ping(ctx)
}

// Name reports the backend for health output.
func (d *Database) Name() string {
	if d == nil {
		return "database"
	}
	return string(d.Backend)
}

// Close releases the active backend.
func (d *Database) Close(ctx context.Context) {
	if d == nil {
		return
	}
	d.Mongo.Close(ctx)
	d.Postgres.Close()
}
