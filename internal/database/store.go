package database

import (
	"context"
	"fmt"

	"github.com/LucianoSainz/w5d1/internal/config"
	"github.com/LucianoSainz/w5d1/internal/models"
	"github.com/LucianoSainz/w5d1/internal/repositories"
	"go.uber.org/zap"
)

// UserStore is a user repository bound to an open database
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	Ping(ctx context.Context) error
}

// Store is the credential store selected by configuration
type Store struct {
	Users UserStore

	newMigrator  func() (*Migrator, error)
	ownsMigrator bool
	close        func()
}

// Open connects to the configured database driver and builds its user repository
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := ConnectPostgres(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		return &Store{
			Users: repositories.NewPgUserRepository(pool, logger),
			newMigrator: func() (*Migrator, error) {
				return NewPostgresMigrator(cfg.DSN(), cfg.MigrationSource())
			},
			ownsMigrator: true,
			close:        pool.Close,
		}, nil
	case config.DriverMySQL, "":
		db, err := ConnectMySQL(cfg.DSN())
		if err != nil {
			return nil, err
		}
		return &Store{
			Users: repositories.NewUserRepository(db, logger),
			newMigrator: func() (*Migrator, error) {
				return NewMySQLMigrator(db, cfg.MigrationSource())
			},
			close: func() { db.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

// Migrate applies all pending migrations
func (s *Store) Migrate() error {
	m, release, err := s.Migrator()
	if err != nil {
		return err
	}
	defer release()
	return m.Up()
}

// Migrator returns a migrator for the store's schema and a function releasing it.
// The MySQL migrator shares the store connection so its release does nothing.
func (s *Store) Migrator() (*Migrator, func(), error) {
	m, err := s.newMigrator()
	if err != nil {
		return nil, nil, err
	}
	release := func() {}
	if s.ownsMigrator {
		release = func() { m.Close() }
	}
	return m, release, nil
}

// Close closes the database connection
func (s *Store) Close() {
	s.close()
}
