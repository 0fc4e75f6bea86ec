// Package store defines the Store struct that composes the module's
// dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger
//   - database pool
//   - repositories
//
// Callers construct it once at process startup with an explicit config
// and dispose of it with Shutdown; there is no package-level engine or
// session state anywhere in the module.
package store

import (
	"context"
	"fmt"

	"github.com/deppfellow/users-store/config"
	"github.com/deppfellow/users-store/database"
	"github.com/deppfellow/users-store/repository"
	"github.com/rs/zerolog"
)

// Store is the container holding the module's shared resources.
type Store struct {
	Config *config.Config
	Logger *zerolog.Logger
	DB     *database.Database
	Repos  *repository.Repositories
}

// New constructs a Store and initializes its dependencies: it builds
// the PostgreSQL pool (pinging it so startup fails fast) and wires the
// repositories on top of it.
func New(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (*Store, error) {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Store{
		Config: cfg,
		Logger: log,
		DB:     db,
		Repos:  repository.NewRepositories(db, log),
	}, nil
}

// Migrate brings the schema up to date. Run it before serving traffic;
// it is separate from New so deployments can choose when migrations
// happen.
func (s *Store) Migrate(ctx context.Context) error {
	return database.Migrate(ctx, s.Logger, s.Config)
}

// Shutdown releases the Store's resources. The pool close blocks until
// in-flight repository calls have released their connections.
func (s *Store) Shutdown(ctx context.Context) error {
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
