// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	router "astrochat/internal/api"
	"astrochat/internal/api/handler"
	"astrochat/internal/auth"
	"astrochat/internal/config"
	"astrochat/internal/lock"
	"astrochat/internal/notify"
	"astrochat/internal/repository"
	"astrochat/internal/repository/postgres"
	"astrochat/internal/service"
	"astrochat/internal/session"
	"astrochat/internal/util"
	"astrochat/pkg/cache"
	"astrochat/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  redis.UniversalClient

	// Repositories
	ConsultationRepository repository.ConsultationRepository
	WalletRepository       repository.WalletRepository
	TransactionRepository  repository.TransactionRepository
	MessageRepository      repository.MessageRepository
	UserRepository         repository.UserRepository

	// Services
	SessionService      service.SessionService
	ConsultationService service.ConsultationService
	WalletService       service.WalletService

	// Session engine
	Registry   *session.Registry
	Supervisor *session.Supervisor
	Gateway    *session.Gateway

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components. ctx bounds the lifetime
// of background billing processes.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Connect to Redis (distributed minute lock backend)
	redisClient, err := cache.NewRedisClient(ctx, app.Config.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.Redis = redisClient
	app.Logger.Info("Redis connection established.")

	// 5. Initialize Repositories
	app.ConsultationRepository = postgres.NewConsultationRepository(app.DB)
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.MessageRepository = postgres.NewMessageRepository(app.DB)
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 6. Initialize Services
	app.SessionService = service.NewSessionService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor
		app.ConsultationRepository,
		app.WalletRepository,
		app.TransactionRepository,
		app.MessageRepository,
		app.UserRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.ConsultationService = service.NewConsultationService(
		app.DB,
		app.DB,
		app.ConsultationRepository,
		app.MessageRepository,
		app.UserRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.WalletService = service.NewWalletService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize the session engine
	resolver := auth.NewJWTResolver(app.Config.JWTSecret, app.DB, app.UserRepository)
	notifier := notify.NewLogNotifier(app.Logger)
	minuteLock := lock.NewRedisMinuteLock(app.Redis)

	app.Registry = session.NewRegistry(app.Logger)
	biller := session.NewBiller(app.SessionService, minuteLock, app.Registry, app.Logger,
		app.Config.BillingInterval, app.Config.MinuteLockTTL)
	app.Supervisor = session.NewSupervisor(ctx, biller)
	app.Gateway = session.NewGateway(app.SessionService, app.Registry, app.Supervisor,
		resolver, notifier, app.Logger)
	app.Logger.Info("Session engine initialized.")

	// 8. Initialize HTTP Handlers and Router
	consultationHandler := handler.NewConsultationHandler(app.ConsultationService, app.Logger)
	walletHandler := handler.NewWalletHandler(app.WalletService, app.Logger)
	app.HTTPHandler = router.NewRouter(consultationHandler, walletHandler, app.Gateway, resolver, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close Redis connection", "error", err)
		} else {
			app.Logger.Info("Redis connection closed.")
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
