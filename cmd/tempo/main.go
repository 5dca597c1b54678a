package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/tempo/internal/chat"
	"github.com/alexanderramin/tempo/internal/cli"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/logging"
	"github.com/alexanderramin/tempo/internal/ratelimit"
	"github.com/alexanderramin/tempo/internal/remindparse"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/scheduler"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/telegram"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// TEMPO_CONFIG points at an explicit file; otherwise ./tempo.yaml is
	// read when present.
	cfg, err := config.Load(os.Getenv("TEMPO_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	loc := cfg.Location()

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	reminderRepo := repository.NewSQLiteReminderRepo(database)
	deliveryRepo := repository.NewSQLiteDeliveryRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	parser := remindparse.New(remindparse.WithDefaultTime(cfg.FireTime()))
	reminderSvc := service.NewReminderService(reminderRepo, uow, parser,
		service.WithActiveLimit(cfg.MaxActivePerOwner),
		service.WithLocation(loc),
		service.WithObserver(service.NewLogUseCaseObserver(logger)),
	)

	chatOpts := []chat.Option{chat.WithLogger(logger)}
	if cfg.Redis.Addr != "" && cfg.RateLimit.PerMinute > 0 {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.RateLimit.PerMinute, time.Minute)
		if err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		defer limiter.Close()
		if err := limiter.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable; rate limiting fails open until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		chatOpts = append(chatOpts, chat.WithLimiter(limiter))
	}

	app := &cli.App{
		Reminders: reminderSvc,
		Parser:    parser,
		Chat:      chat.NewHandler(reminderSvc, chatOpts...),
		Dispatcher: func(ch scheduler.MessageChannel) *scheduler.Dispatcher {
			return scheduler.NewDispatcher(reminderRepo, ch,
				scheduler.WithInterval(cfg.PollInterval),
				scheduler.WithStartupDelay(cfg.StartupDelay),
				scheduler.WithLocation(loc),
				scheduler.WithLogger(logger),
				scheduler.WithDeliveryLog(deliveryRepo),
			)
		},
		Location: loc,
	}

	if cfg.Telegram.Token != "" {
		bot, err := telegram.NewClient(cfg.Telegram.Token,
			telegram.WithAPIURL(cfg.Telegram.APIURL),
			telegram.WithPollTimeout(cfg.Telegram.PollTimeout),
			telegram.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		app.Telegram = bot
	}

	// Detect interactive terminal for the add form.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}
