package botapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

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
	cfg      config.Config
	logger   *zap.Logger
	postgres *pgxpool.Pool
	bot      *tginfra.Bot

	userService   *userssvc.Service
	taskService   *taskssvc.Service
	walletService *walletsvc.Service
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if strings.TrimSpace(cfg.Bot.Token) == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required for the bot process")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for bot app: %w", err)
	}

	bot, err := tginfra.NewBot(cfg.Bot.Token, cfg.Bot.RequestTimeout)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	userRepo := pgrepo.NewUserRepo(pool)
	taskRepo := pgrepo.NewTaskRepo(pool)
	completionRepo := pgrepo.NewCompletionRepo(pool)
	transactionRepo := pgrepo.NewTransactionRepo(pool)
	withdrawalRepo := pgrepo.NewWithdrawalRepo(pool)

	userService := userssvc.NewService(userssvc.Dependencies{Users: userRepo})
	taskService := taskssvc.NewService(taskssvc.Dependencies{
		Pool:        pool,
		Tasks:       taskRepo,
		Completions: completionRepo,
		Users:       userRepo,
		Ledger:      transactionRepo,
		Membership:  bot,
	})
	walletService := walletsvc.NewService(walletsvc.Dependencies{
		Pool:        pool,
		Users:       userRepo,
		Withdrawals: withdrawalRepo,
		Ledger:      transactionRepo,
		Notifier:    tginfra.NewAdminNotifier(bot, cfg.Bot.AdminID),
		Messenger:   bot,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		postgres:      pool,
		bot:           bot,
		userService:   userService,
		taskService:   taskService,
		walletService: walletService,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started", zap.Int64("admin_id", a.cfg.Bot.AdminID))

	err := a.bot.Listen(ctx, tginfra.Handlers{
		OnCommand: a.handleCommand,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.logger.Info("bot app stopped")
	return nil
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
}

func (a *App) isAdmin(telegramID int64) bool {
	return a.cfg.Bot.AdminID != 0 && telegramID == a.cfg.Bot.AdminID
}
