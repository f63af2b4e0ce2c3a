package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/budline/budline/internal/app/controllers"
	appMigrations "github.com/budline/budline/internal/app/migrations"
	appRepos "github.com/budline/budline/internal/app/repositories"
	appRoutes "github.com/budline/budline/internal/app/routes"
	appServices "github.com/budline/budline/internal/app/services"
	"github.com/budline/budline/internal/config"
	"github.com/budline/budline/internal/db"
	appMiddleware "github.com/budline/budline/internal/middleware"
	pkgAuth "github.com/budline/budline/internal/pkg/auth"
	"github.com/budline/budline/internal/pkg/filestorage"
	"github.com/budline/budline/internal/pkg/helpers"
	"github.com/budline/budline/internal/pkg/logger"
	"github.com/budline/budline/internal/pkg/websocket"
	"github.com/budline/budline/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	JWTService  *pkgAuth.JWTService
	FileStorage *filestorage.LocalStorage
	Hub         *websocket.Hub
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// provisions default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	lgr.Info().Msg("Database connection established")

	migrator := appMigrations.NewMigrator(dbPool)
	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations applied")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		dbPool.Close()
		return nil, err
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services and supporting
// infrastructure.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	repos := appRepos.NewRepositories(dbPool)

	// Uploaded files are served under /uploads
	fileStorage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 30*24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	hub := websocket.NewHub(lgr.With().Str("component", "ws-hub").Logger())
	go hub.Run()

	services := appServices.NewServices(repos, jwtService, fileStorage, hub, lgr)

	return &Dependencies{
		Repos:       repos,
		Services:    services,
		JWTService:  jwtService,
		FileStorage: fileStorage,
		Hub:         hub,
		Logger:      lgr,
	}, nil
}

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	authMiddleware := appMiddleware.NewAuthMiddleware(deps.JWTService)

	wsHandler := websocket.NewHandler(
		deps.Hub,
		deps.Services.ConversationService,
		lgr.With().Str("component", "ws-handler").Logger(),
	)

	appRoutes.SetupRouter(
		router,
		appControllers.NewAuthController(deps.Services.AuthService),
		appControllers.NewFeedController(deps.Services.FeedService),
		appControllers.NewConversationController(deps.Services.ConversationService),
		appControllers.NewMessageController(deps.Services.MessageService),
		appControllers.NewReactionController(deps.Services.ReactionService),
		appControllers.NewSocialController(deps.Services.SocialService),
		appControllers.NewModerationController(deps.Services.ModerationService),
		appControllers.NewAttachmentController(deps.Services.AttachmentService),
		wsHandler,
		authMiddleware,
	)

	return router
}
