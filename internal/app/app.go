// Package app assembles the portal's dependencies from configuration. Both
// the HTTP server and portalctl start from here.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/seanlongden/asa-student-portal/internal/billing"
	"github.com/seanlongden/asa-student-portal/internal/catalog"
	"github.com/seanlongden/asa-student-portal/internal/config"
	"github.com/seanlongden/asa-student-portal/internal/db"
	"github.com/seanlongden/asa-student-portal/internal/emailtools"
	httpapi "github.com/seanlongden/asa-student-portal/internal/http"
	"github.com/seanlongden/asa-student-portal/internal/logger"
	"github.com/seanlongden/asa-student-portal/internal/migrations"
	"github.com/seanlongden/asa-student-portal/internal/notify"
	"github.com/seanlongden/asa-student-portal/internal/services"
	"github.com/seanlongden/asa-student-portal/internal/throttle"
)

type App struct {
	Config config.Config
	Log    *logger.Logger
	DB     *sqlx.DB
	Deps   httpapi.Deps

	closers []io.Closer
}

// NewLogger tees log output to stdout and a daily file under cfg.LogDir. When
// the directory cannot be opened it logs to stdout only.
func NewLogger(cfg config.Config) (*logger.Logger, io.Closer) {
	file, err := logger.OpenDailyFile(cfg.LogDir, cfg.LogRetentionDays)
	if err != nil {
		log := logger.New(cfg.AppEnv, os.Stdout)
		log.Warn("daily log file disabled", "dir", cfg.LogDir, "error", err)
		return log, nil
	}
	return logger.New(cfg.AppEnv, io.MultiWriter(os.Stdout, file)), file
}

// Open connects to the database, applies pending migrations and wires every
// adapter. Optional integrations fall back to local stand-ins when their
// credentials are missing.
func Open(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	a := &App{Config: cfg, Log: log, DB: database}
	a.closers = append(a.closers, database)

	applied, err := migrations.Apply(ctx, database, migrations.Files())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	for _, name := range applied {
		log.Info("migration applied", "name", name)
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("catalog: %w", err)
	}
	sealer, err := services.NewKeySealer(cfg.APIKeySecret)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("api key sealer: %w", err)
	}

	a.Deps = httpapi.Deps{
		Store: db.NewStore(database),
		Billing: billing.New(billing.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookKey,
			PublicURL:     cfg.PublicURL,
			Timeout:       cfg.ProviderTimeout,
		}),
		Notifier: a.notifier(),
		Throttle: a.throttle(ctx),
		Fetcher:  emailtools.NewRegistry(emailtools.Config{Timeout: cfg.ProviderTimeout}),
		Catalog:  cat,
		Sealer:   sealer,
		Log:      log,
	}
	if cfg.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set; billing calls will fail")
	}
	if !cfg.AdminEnabled() {
		log.Warn("ADMIN_JWT_SECRET is not set; the admin API answers 503")
	}
	return a, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func (a *App) notifier() services.Notifier {
	if a.Config.ResendAPIKey == "" {
		a.Log.Warn("RESEND_API_KEY is not set; emails are logged instead of sent")
		return notify.LogNotifier{Log: a.Log.With("component", "notify")}
	}
	return notify.NewResend(a.Config.ResendAPIKey, a.Config.EmailFrom)
}

func (a *App) throttle(ctx context.Context) services.Throttle {
	if a.Config.RedisAddr == "" {
		return throttle.Noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		a.Log.Warn("redis unavailable; login links are not throttled", "addr", a.Config.RedisAddr, "error", err)
		_ = client.Close()
		return throttle.Noop{}
	}
	a.closers = append(a.closers, client)
	return throttle.NewRedis(client, "portal:", a.Config.LoginLinkLimit, a.Config.LoginLinkWindow)
}

// MetricsSync builds a standalone sync service for commands that run
// outside the HTTP server.
func (a *App) MetricsSync() *services.MetricsSync {
	return &services.MetricsSync{
		Store:   a.Deps.Store,
		Fetcher: a.Deps.Fetcher,
		Sealer:  a.Deps.Sealer,
		Log:     a.Log.With("component", "metrics-sync"),
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}
