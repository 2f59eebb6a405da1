package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"atmcore/internal/controller"
	"atmcore/internal/core"
	"atmcore/internal/metrics"
	"atmcore/internal/middlewareinternal"
	"atmcore/internal/repository"
	"atmcore/internal/service"
)

type App struct {
	cfg         *Config
	Router      *chi.Mux
	db          *repository.Database
	Logger      *zap.Logger
	Server      *http.Server
	AuthService core.AuthService
}

func New(cfg *Config) (*App, error) {
	app := &App{
		cfg:    cfg,
		Router: chi.NewRouter(),
		Logger: zap.L(),
	}

	if err := app.initDB(); err != nil {
		return nil, err
	}

	app.initRouter()
	return app, nil
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) initDB() error {
	dbConfig := repository.DatabaseConfig{
		DSN:            a.cfg.DatabaseURI,
		MigrationsPath: a.cfg.MigrationsPath,
	}

	db, err := repository.NewDatabase(dbConfig)
	if err != nil {
		a.Logger.Error("Database initialization failed",
			zap.String("dsn", a.cfg.MaskDBPassword()),
			zap.Error(err))
		return fmt.Errorf("database initialization failed: %w", err)
	}

	a.db = db
	a.Logger.Info("Database initialized successfully",
		zap.String("migrations_path", a.cfg.MigrationsPath))

	return nil
}

func (a *App) initRouter() {
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.RealIP)
	a.Router.Use(middleware.Logger)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.Compress(5))

	// Repositories
	userRepo := repository.NewUserRepository(a.db)
	ledgerRepo := repository.NewLedgerRepository(a.db)
	txnRepo := repository.NewTransactionRepository(a.db)

	// Services
	a.AuthService = service.NewAuthService(userRepo, a.cfg.JWTSecretKey, a.cfg.SessionTTL)
	ledgerService := service.NewLedgerService(userRepo, ledgerRepo, txnRepo, a.Logger)

	// Controllers
	authController := controller.NewAuthController(a.AuthService, a.cfg.SessionTTL, a.Logger)
	balanceController := controller.NewBalanceController(ledgerService)
	transactionController := controller.NewTransactionController(ledgerService, a.Logger)

	// Public routes
	a.Router.Post("/api/user/register", authController.Register)
	a.Router.Post("/api/user/login", authController.Login)
	a.Router.Handle("/metrics", metrics.Handler())

	// Protected routes
	a.Router.Group(func(r chi.Router) {
		r.Use(middlewareinternal.SessionAuthMiddleware(a.AuthService))

		r.Post("/api/user/logout", authController.Logout)
		r.Get("/api/user/balance", balanceController.GetBalance)
		r.Post("/api/user/deposit", transactionController.Deposit)
		r.Post("/api/user/withdraw", transactionController.Withdraw)
		r.Get("/api/user/transactions", transactionController.GetTransactions)
	})
}

// StartSessionSweeper evicts expired sessions on a fixed interval until the
// context is cancelled.
func StartSessionSweeper(ctx context.Context, authService core.AuthService, logger *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Session sweeper stopped")
			return
		case <-ticker.C:
			if removed := authService.SweepSessions(); removed > 0 {
				logger.Debug("Expired sessions evicted", zap.Int("count", removed))
			}
		}
	}
}
