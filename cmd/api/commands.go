package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/huskybridge/marketplace/internal/bootstrap"
	"github.com/huskybridge/marketplace/internal/config"
	"github.com/huskybridge/marketplace/internal/db"
	"github.com/huskybridge/marketplace/internal/server"
)

var (
	// Global flags
	configPath string

	// Serve flags
	autoMigrate bool
	autoSeed    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "huskybridge",
	Short: "HuskyBridge campus marketplace API",
	Long: `HuskyBridge lets students post requests and offers, pick a collaborator
and confirm completed exchanges.

Commands:
  serve           - Run the HTTP API
  migrate         - Apply pending database migrations
  seed            - Create the configured administrator account
  tokens-cleanup  - Delete expired and revoked refresh tokens`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.NewServer(cmd.Context(), server.Options{
			ConfigPath: configPath,
			Migrate:    autoMigrate,
			Seed:       autoSeed,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}
		return srv.Run()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
			return bootstrap.RunMigrations(ctx, cfg, database, lgr)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the configured administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
			deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
			if err != nil {
				return err
			}
			return bootstrap.SeedAdmin(ctx, cfg, deps.Repos, lgr)
		})
	},
}

var tokensCleanupCmd = &cobra.Command{
	Use:   "tokens-cleanup",
	Short: "Delete expired and revoked refresh tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
			deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
			if err != nil {
				return err
			}
			removed, err := deps.Services.Auth.CleanupExpiredTokens(ctx)
			if err != nil {
				return fmt.Errorf("cleanup tokens: %w", err)
			}
			lgr.Info().Int64("removed", removed).Msg("Refresh tokens cleaned up")
			return nil
		})
	},
}

// withDatabase loads the configuration, connects and runs fn
func withDatabase(fn func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}
	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(context.Background(), cfg, database, lgr)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to the YAML configuration file")

	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Apply pending migrations before serving")
	serveCmd.Flags().BoolVar(&autoSeed, "seed", true, "Create the configured admin account before serving")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokensCleanupCmd)
}
