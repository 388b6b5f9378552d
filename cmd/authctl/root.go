package main

import (
	"context"
	"fmt"

	"github.com/LucianoSainz/w5d1/internal/config"
	"github.com/LucianoSainz/w5d1/internal/database"
	"github.com/LucianoSainz/w5d1/internal/logger"
	"github.com/LucianoSainz/w5d1/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// migrator is the part of *database.Migrator the migrate commands use
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

// app holds the dependencies of the commands so tests can replace them
type app struct {
	loadConfig   func() (*config.Config, error)
	openUsers    func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.UserRepository, func(), error)
	openMigrator func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (migrator, func(), error)
	readPassword func(fd int) ([]byte, error)
}

func newApp() *app {
	return &app{
		loadConfig:   config.Load,
		openUsers:    openUsers,
		openMigrator: openMigrator,
		readPassword: term.ReadPassword,
	}
}

// NewRootCmd creates the root command of the CLI.
func NewRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "authctl - administration of the auth service",
		Long: `authctl manages the credential store of the auth service.
It reads the same environment variables and .env file as the server.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewCreateUserCmd(a))
	cmd.AddCommand(NewMigrateCmd(a))

	return cmd
}

// setup loads the configuration and builds the logger
func (a *app) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, zapLogger, nil
}

func openUsers(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.UserRepository, func(), error) {
	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return store.Users, store.Close, nil
}

func openMigrator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (migrator, func(), error) {
	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	m, release, err := store.Migrator()
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return m, func() {
		release()
		store.Close()
	}, nil
}
