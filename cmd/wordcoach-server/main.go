package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/at-ishikawa/wordcoach/internal/bootstrap"
	"github.com/at-ishikawa/wordcoach/internal/config"
	"github.com/at-ishikawa/wordcoach/internal/database"
	"github.com/at-ishikawa/wordcoach/internal/observe"
	"github.com/at-ishikawa/wordcoach/internal/progress"
	"github.com/at-ishikawa/wordcoach/internal/reminder"
	"github.com/at-ishikawa/wordcoach/internal/server"
)

var (
	configFile string
	version    = "dev"
)

func main() {
	var migrateOnStart bool
	rootCmd := &cobra.Command{
		Use:           "wordcoach-server",
		Short:         "Wordcoach practice service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), migrateOnStart)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply database migrations before serving")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, migrateOnStart bool) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("godotenv.Load() > %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	app := bootstrap.New()

	metrics := observe.DefaultMetrics()
	if cfg.Metrics.Enabled {
		shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			return fmt.Errorf("observe.InitProvider() > %w", err)
		}
		app.AddShutdownHook(shutdownMetrics)
		if metrics, err = observe.NewMetrics(otel.GetMeterProvider()); err != nil {
			return fmt.Errorf("observe.NewMetrics() > %w", err)
		}
	}

	if migrateOnStart && cfg.Store.Type == config.StoreDatabase {
		if err := migrate(ctx, cfg.Database); err != nil {
			return err
		}
	}

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap.OpenStore() > %w", err)
	}
	app.AddShutdownHook(func(context.Context) error { return closeStore() })

	service := bootstrap.NewService(store, cfg.Practice, metrics)
	handler, err := server.NewPracticeHandler(service)
	if err != nil {
		return fmt.Errorf("server.NewPracticeHandler() > %w", err)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.NewHTTPHandler(handler, server.HTTPOptions{
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
			ServeMetrics:   cfg.Metrics.Enabled,
		}),
	}
	app.AddShutdownHook(srv.Shutdown)

	runs := []func(ctx context.Context) error{
		func(ctx context.Context) error {
			slog.Info("starting server", "addr", srv.Addr, "store", cfg.Store.Type)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("srv.ListenAndServe() > %w", err)
			}
			return nil
		},
	}

	if cfg.Reminders.Enabled {
		scheduler, err := newReminderScheduler(cfg.Reminders, store, metrics)
		if err != nil {
			return err
		}
		app.AddShutdownHook(func(context.Context) error {
			scheduler.Stop()
			return nil
		})
		runs = append(runs, func(ctx context.Context) error {
			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			slog.Info("reminder scheduler started", "schedule", cfg.Reminders.Schedule)
			<-ctx.Done()
			return nil
		})
	}

	return app.Run(ctx, runs...)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func migrate(ctx context.Context, cfg config.DatabaseConfig) error {
	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if _, err := database.Migrate(ctx, db, cfg.Driver); err != nil {
		return fmt.Errorf("database.Migrate() > %w", err)
	}
	return nil
}

func newReminderScheduler(cfg config.RemindersConfig, store progress.Store, metrics *observe.Metrics) (*reminder.Scheduler, error) {
	lister, ok := store.(progress.DueLister)
	if !ok {
		return nil, fmt.Errorf("reminders need a store that can list due words, got %T", store)
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return nil, err
	}

	return reminder.NewScheduler(lister, notifier, progress.SystemClock{}, metrics, reminder.Options{
		Schedule:  cfg.Schedule,
		StartHour: cfg.StartHour,
		EndHour:   cfg.EndHour,
		MaxWords:  cfg.MaxWords,
	}), nil
}

// newNotifier prefers Telegram, then the webhook, and falls back to logging.
func newNotifier(cfg config.RemindersConfig) (reminder.Notifier, error) {
	switch {
	case cfg.Telegram.Token != "":
		telegram, err := reminder.NewTelegramNotifier(cfg.Telegram.Token)
		if err != nil {
			return nil, fmt.Errorf("reminder.NewTelegramNotifier() > %w", err)
		}
		return telegram, nil
	case cfg.Webhook.URL != "":
		return reminder.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Token, cfg.Webhook.Attempts), nil
	default:
		return reminder.NewLogNotifier(slog.Default()), nil
	}
}
