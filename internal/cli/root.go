// Package cli implements supportctl, the operator command line for the
// support desk service.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
)

var version = "dev"

// environment carries what the subcommands share. Tests pre-populate users
// and skip the database entirely.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
	users  repository.UserRepository
}

func (e *environment) accounts() *service.AccountService {
	return service.NewAccountService(e.cfg.Auth, e.users, nil)
}

func (e *environment) requirePostgres() error {
	if !e.pg.Configured() {
		return errors.New("POSTGRES_DSN is not set")
	}
	return nil
}

func (e *environment) close() {
	e.pg.Close()
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

func newRootCommand(env *environment) *cobra.Command {
	root := &cobra.Command{
		Use:           "supportctl",
		Short:         "Operate the support desk service",
		Long:          `supportctl applies database migrations, provisions accounts and issues bearer tokens for the support desk API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || env.users != nil {
				return nil
			}
			return env.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.close()
		},
	}

	root.AddCommand(newMigrateCommand(env))
	root.AddCommand(newAddUserCommand(env))
	root.AddCommand(newTokenCommand(env))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "supportctl %s\n", version)
		},
	})
	return root
}

func (e *environment) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, "supportctl")
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}

	e.cfg = cfg
	e.logger = logger
	e.pg = pg
	if pg.Configured() {
		e.users = repository.NewUserRepository(pg.PoolHandle())
	}
	return nil
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	version = v
}

// Execute runs the command line.
func Execute(ctx context.Context) error {
	return newRootCommand(&environment{}).ExecuteContext(ctx)
}
