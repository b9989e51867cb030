package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/onetwonaz-bit/cointap/internal/config"
	tginfra "github.com/onetwonaz-bit/cointap/internal/infra/telegram"
	pgrepo "github.com/onetwonaz-bit/cointap/internal/repo/postgres"
	taskssvc "github.com/onetwonaz-bit/cointap/internal/services/tasks"
	userssvc "github.com/onetwonaz-bit/cointap/internal/services/users"
	walletsvc "github.com/onetwonaz-bit/cointap/internal/services/wallet"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.AllowedOrigins)

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := pgrepo.RunMigrations(cfg.Postgres.DSN); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	var bot *tginfra.Bot
	if strings.TrimSpace(cfg.Bot.Token) != "" {
		bot, err = tginfra.NewBot(cfg.Bot.Token, cfg.Bot.RequestTimeout)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
	} else {
		log.Warn("BOT_TOKEN is empty, subscription checks and admin notifications disabled")
	}

	userRepo := pgrepo.NewUserRepo(pool)
	taskRepo := pgrepo.NewTaskRepo(pool)
	completionRepo := pgrepo.NewCompletionRepo(pool)
	transactionRepo := pgrepo.NewTransactionRepo(pool)
	withdrawalRepo := pgrepo.NewWithdrawalRepo(pool)

	userService := userssvc.NewService(userssvc.Dependencies{Users: userRepo})

	taskDeps := taskssvc.Dependencies{
		Pool:        pool,
		Tasks:       taskRepo,
		Completions: completionRepo,
		Users:       userRepo,
		Ledger:      transactionRepo,
	}
	walletDeps := walletsvc.Dependencies{
		Pool:        pool,
		Users:       userRepo,
		Withdrawals: withdrawalRepo,
		Ledger:      transactionRepo,
	}
	if bot != nil {
		taskDeps.Membership = bot
		walletDeps.Notifier = tginfra.NewAdminNotifier(bot, cfg.Bot.AdminID)
		walletDeps.Messenger = bot
	}
	taskService := taskssvc.NewService(taskDeps)
	walletService := walletsvc.NewService(walletDeps)

	RegisterRoutes(r, Dependencies{
		UserService:   userService,
		TaskService:   taskService,
		WalletService: walletService,
		AdminID:       cfg.Bot.AdminID,
		Logger:        log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
