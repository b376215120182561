package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/huskybridge/marketplace/internal/bootstrap"
	"github.com/huskybridge/marketplace/internal/config"
	"github.com/huskybridge/marketplace/internal/db"
	"github.com/huskybridge/marketplace/internal/pkg/helpers"
	"github.com/huskybridge/marketplace/internal/telemetry"
)

// Options control start-up work done before serving
type Options struct {
	ConfigPath string
	// Migrate applies pending migrations before serving
	Migrate bool
	// Seed creates the configured admin account before serving
	Seed bool
}

// Server holds the state for the HTTP server.
type Server struct {
	config    *config.Config
	router    *gin.Engine
	database  *db.PostgresDB
	telemetry *telemetry.Telemetry
	logger    zerolog.Logger
	http      *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(ctx context.Context, opts Options) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}
	if tel != nil {
		lgr.Info().Str("endpoint", cfg.Telemetry.Endpoint).Msg("Trace export enabled")
	}

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	s := &Server{
		config:    cfg,
		database:  database,
		telemetry: tel,
		logger:    lgr,
	}

	if opts.Migrate {
		if err := bootstrap.RunMigrations(ctx, cfg, database, lgr); err != nil {
			s.close(ctx)
			return nil, err
		}
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	if opts.Seed {
		if err := bootstrap.SeedAdmin(ctx, cfg, deps.Repos, lgr); err != nil {
			// A missing admin does not prevent serving
			lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
		}
	}

	s.router = bootstrap.SetupRouter(cfg, deps, lgr)
	return s, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  helpers.ParseDuration(s.config.Server.ReadTimeout, 10*time.Second),
		WriteTimeout: helpers.ParseDuration(s.config.Server.WriteTimeout, 10*time.Second),
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for errors starting the server
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(osSignals)

	// Block until we receive either a server error or an OS signal
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.close(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if err := s.close(ctx); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}

// close releases the database pool and flushes pending spans
func (s *Server) close(ctx context.Context) error {
	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
	}
	if err := s.telemetry.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Telemetry shutdown error")
		return err
	}
	return nil
}
