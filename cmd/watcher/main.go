package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"salvage_search/internal/alert"
	"salvage_search/internal/billing"
	"salvage_search/internal/config"
	"salvage_search/internal/publisher"
	"salvage_search/internal/scheduler"
	"salvage_search/internal/search"
	"salvage_search/internal/source/pickyourpart"
	"salvage_search/internal/source/row52"
	"salvage_search/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize RabbitMQ alert sink
	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:               cfg.RabbitMQ.URL,
		Exchange:          cfg.RabbitMQ.Exchange,
		EmailRoutingKey:   cfg.RabbitMQ.EmailRoutingKey,
		EmailQueue:        cfg.RabbitMQ.EmailQueue,
		DiscordRoutingKey: cfg.RabbitMQ.DiscordRoutingKey,
		DiscordQueue:      cfg.RabbitMQ.DiscordQueue,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	// Initialize stores
	savedSearchStore := postgres.NewSavedSearchStore(db)
	userStore := postgres.NewUserStore(db)
	txManager := postgres.NewTransactionManager(db)

	// Initialize source adapters
	pypSource, err := pickyourpart.New(cfg.Sources.PickYourPart, logger)
	if err != nil {
		logger.Error("failed to build pick-your-part source", "error", err)
		os.Exit(1)
	}
	row52Source := row52.New(cfg.Sources.Row52, logger)

	// Create the aggregation engine shared by the web app and alert engine
	engine := search.NewEngine(
		[]search.Adapter{pypSource, row52Source},
		search.NewMemoryCache(),
		search.Config{
			SourcePriority:   cfg.Search.SourcePriority,
			DefaultOrigin:    cfg.Search.DefaultOrigin,
			LocationCacheTTL: cfg.Search.LocationCacheTTL,
		},
		logger,
	)

	billingClient := billing.NewClient(cfg.Billing, logger)

	alertService := alert.NewService(
		engine,
		savedSearchStore,
		userStore,
		billingClient,
		rabbitMQ,
		txManager,
		logger,
		alert.Config{
			BatchSize:         cfg.Alerts.BatchSize,
			LockStaleness:     cfg.Alerts.LockStaleness,
			SearchURLTemplate: cfg.Search.SearchURLTemplate,
		},
	)

	sched := scheduler.NewScheduler(alertService, cfg.Alerts.Interval, cfg.Alerts.RunTimeout, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting alert watcher",
		"sources", []string{pypSource.Name(), row52Source.Name()},
		"interval", cfg.Alerts.Interval,
		"batch_size", cfg.Alerts.BatchSize,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
