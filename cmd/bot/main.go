// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/warfbot/warfbot/internal/bot"
	"github.com/warfbot/warfbot/internal/bot/handlers"
	"github.com/warfbot/warfbot/internal/bot/tasks"
	"github.com/warfbot/warfbot/internal/config"
	"github.com/warfbot/warfbot/internal/database"
	"github.com/warfbot/warfbot/internal/logger"
	"github.com/warfbot/warfbot/internal/lookup"
	"github.com/warfbot/warfbot/internal/notify"
	"github.com/warfbot/warfbot/internal/telegram"
	"github.com/warfbot/warfbot/internal/worldstate"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// world-state client, notification core, bot, scheduler), handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db) // Ensure DB is closed on function exit
	store := database.NewStore(db, log)

	table, err := cfg.BuildCycleTable()
	if err != nil {
		log.Error("Invalid cycle configuration", "error", err)
		return 1
	}

	lookupDB, err := lookup.Load()
	if err != nil {
		log.Error("Failed to load warframe reference data", "error", err)
		return 1
	}

	wsClient := worldstate.NewClient(worldstate.Config{
		BaseURL:  cfg.Worldstate.BaseURL,
		Platform: cfg.Worldstate.Platform,
		Timeout:  cfg.Worldstate.Timeout,
		CacheTTL: cfg.Worldstate.CacheTTL,
	}, log)

	ledger := notify.NewLedger(store, log)
	registry := notify.NewRegistry(store, log)
	if err := ledger.Load(ctx); err != nil {
		log.Error("Failed to restore fired-alert ledger", "error", err)
		return 1
	}
	if err := registry.Load(ctx); err != nil {
		log.Error("Failed to restore subscriber registry", "error", err)
		return 1
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgbot.WithMiddlewares(logger.Middleware(log)))
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	dispatcher := notify.NewDispatcher(telegram.NewSender(tg, log), registry, cfg.Notify.RatePerSecond, log)
	core := notify.NewCore(notify.CoreConfig{
		Table:      table,
		Thresholds: cfg.Notify.ThresholdsMin,
		Ledger:     ledger,
		Registry:   registry,
		Dispatcher: dispatcher,
		Checkpoint: store,
		Retention:  cfg.Notify.Retention,
		Logger:     log,
	})

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Core:       core,
		Worldstate: wsClient,
		Lookup:     lookupDB,
	}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	tg.RegisterHandlerMatchFunc(handlers.MatchPlainText, handlers.NewDefaultHandler(hDeps))

	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Core:   core,
		Config: cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, core, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
