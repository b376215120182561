package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	appAuth "github.com/huskybridge/marketplace/internal/app/auth"
	appControllers "github.com/huskybridge/marketplace/internal/app/controllers"
	"github.com/huskybridge/marketplace/internal/app/lifecycle"
	appMigrations "github.com/huskybridge/marketplace/internal/app/migrations"
	appRepos "github.com/huskybridge/marketplace/internal/app/repositories"
	appRoutes "github.com/huskybridge/marketplace/internal/app/routes"
	appServices "github.com/huskybridge/marketplace/internal/app/services"
	"github.com/huskybridge/marketplace/internal/config"
	"github.com/huskybridge/marketplace/internal/db"
	appMiddleware "github.com/huskybridge/marketplace/internal/middleware"
	pkgAuth "github.com/huskybridge/marketplace/internal/pkg/auth"
	"github.com/huskybridge/marketplace/internal/pkg/helpers"
	"github.com/huskybridge/marketplace/internal/pkg/id"
	"github.com/huskybridge/marketplace/internal/pkg/logger"
	"github.com/huskybridge/marketplace/internal/pkg/validation"
	"github.com/huskybridge/marketplace/internal/seed"
)

// DefaultConfigPath is where the YAML configuration is looked up
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services       appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies every pending file of the configured migrations directory.
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SeedAdmin creates the configured administrator account when missing.
func SeedAdmin(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	_, err := seed.CreateDefaultAdmin(ctx, repos.UserRepository, seed.AdminAccount{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}, lgr)
	return err
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if err := id.Init(cfg.Snowflake.NodeID); err != nil {
		return nil, fmt.Errorf("failed to initialize id generator: %w", err)
	}
	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(database)

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.UserRepository)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Services.Auth = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		lgr,
	)

	deps.Services.Users = appServices.NewUserService(deps.Repos.UserRepository, lgr)

	deps.Services.Posts = appServices.NewPostService(appServices.PostServiceDeps{
		PostRepo:        deps.Repos.PostRepository,
		ParticipantRepo: deps.Repos.ParticipantRepository,
		UserRepo:        deps.Repos.UserRepository,
		TxManager:       deps.Repos.TxManager,
		Engine:          lifecycle.NewEngine(time.Now),
		NewID:           id.New,
		Locations:       cfg.Marketplace.Locations,
	}, logger.Component("posts"))

	deps.Services.Reports = appServices.NewReportService(appServices.ReportServiceDeps{
		ReportRepo:  deps.Repos.ReportRepository,
		PostRepo:    deps.Repos.PostRepository,
		PostService: deps.Services.Posts,
		TxManager:   deps.Repos.TxManager,
		Authz:       deps.AuthzService,
		NewID:       id.New,
	}, logger.Component("moderation"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.Services.Auth, logger.Component("auth")),
		Users:   appControllers.NewUserController(deps.Services.Users),
		Posts:   appControllers.NewPostController(deps.Services.Posts),
		Reports: appControllers.NewReportController(deps.Services.Reports, logger.Component("moderation")),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
