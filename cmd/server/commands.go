package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/config"
	"github.com/phrazzld/habit-api/internal/platform/logger"
	"github.com/phrazzld/habit-api/internal/platform/postgres"
	"github.com/phrazzld/habit-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// migrationCommands are the goose commands exposed by "migrate".
var migrationCommands = []string{"up", "down", "status", "reset", "version"}

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configFile string
}

func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	var opts []config.Option
	if o.configFile != "" {
		opts = append(opts, config.WithConfigFile(o.configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "server",
		Short:        "Habit ledger API server",
		Long:         "Serves the habit ledger API and manages its database schema.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"path to a config file (default: ./config.yaml when present)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.cleanup()

			return app.startHTTPServer(ctx)
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|reset|version]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != driverPostgres {
				return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
			}

			ctx := cmd.Context()
			db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := db.Close(); cerr != nil {
					log.Error("failed to close database", slog.String("error", cerr.Error()))
				}
			}()

			return postgres.Migrate(ctx, db, args[0], log)
		},
	}
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			return printToken(cmd.Context(), cmd, cfg.Auth, user)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user UUID (a random one when empty)")
	return cmd
}

// printToken writes a signed token for user to the command's output.
func printToken(ctx context.Context, cmd *cobra.Command, cfg config.AuthConfig, user string) error {
	userID := uuid.New()
	if user != "" {
		parsed, err := uuid.Parse(user)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		userID = parsed
	}

	jwtService, err := auth.NewJWTService(cfg)
	if err != nil {
		return err
	}
	token, err := jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "user_id: %s\ntoken: %s\n", userID, token)
	return nil
}
