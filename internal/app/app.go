// Package app wires configuration into a ready service for the server and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Dan9191/cashflow-service/internal/cache"
	"github.com/Dan9191/cashflow-service/internal/categorize"
	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/engine"
	"github.com/Dan9191/cashflow-service/internal/integrations/cbr"
	"github.com/Dan9191/cashflow-service/internal/integrations/sheets"
	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/lock"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/repository"
	"github.com/Dan9191/cashflow-service/internal/scheduler"
	"github.com/Dan9191/cashflow-service/internal/service"
	"github.com/Dan9191/cashflow-service/internal/utils/email"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App holds the wired components
type App struct {
	Config   *config.Config
	Log      *logrus.Logger
	Location *time.Location
	Service  *service.Service
	// Repo is set only for the sql backend
	Repo    *repository.Repository
	closers []func() error
}

// NewLogger builds the JSON logger at the configured level, Info when unparseable
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

// Build opens the configured ledger backend and assembles the service around it
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log, Location: loc}

	store, err := a.openLedger(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	categorizer, err := categorize.Load(cfg.CategoriesFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []service.Option{
		service.WithClock(func() time.Time { return time.Now().In(loc) }),
		service.WithCategorizer(categorizer),
	}
	if cfg.CBRURL != "" {
		opts = append(opts, service.WithRateSource(cbr.NewCBRClient(cfg.CBRURL, cfg.RateMarginPct, cfg.RateTTL, log)))
	}
	if cfg.StatusStrategy == "" && cfg.LedgerBackend == config.BackendSheets {
		opts = append(opts, service.WithStatusStrategy(engine.StrategyBalanceAndDailyRatio))
	}

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		opts = append(opts,
			service.WithCache(cache.NewRedis(client, cfg.CacheTTL, log)),
			service.WithLocker(lock.NewRedis(client, 30*time.Second)),
		)
		log.Infof("Redis cache and day lock enabled")
	}

	a.Service = service.NewService(store, log, cfg, opts...)
	return a, nil
}

func (a *App) openLedger(ctx context.Context) (ledger.Store, error) {
	cfg := a.Config
	// stores and engine must agree on the placeholder or the replace and sweep rules never fire
	prescribed := service.PolicyFrom(cfg).PrescribedDaily
	switch cfg.LedgerBackend {
	case config.BackendSQL:
		db, err := repository.Open(cfg.DBDriver, cfg.DBConn)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		repo := repository.NewRepository(db, cfg.DBDriver, prescribed)
		repo.SetLocation(a.Location)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		a.Repo = repo
		a.Log.Infof("Using %s ledger", cfg.DBDriver)
		return repo, nil
	case config.BackendSheets:
		grid, err := sheets.NewAPIGrid(ctx, cfg.SheetsCredentialsPath, cfg.SheetsSpreadsheetID, cfg.SheetsName)
		if err != nil {
			return nil, err
		}
		a.Log.Infof("Using spreadsheet ledger %s for %d", cfg.SheetsSpreadsheetID, cfg.SheetsYear)
		return sheets.NewLedger(grid, cfg.SheetsYear, models.DefaultSettings(), a.Location), nil
	case config.BackendMemory:
		a.Log.Warnf("Using in-memory ledger; data is lost on exit")
		return ledger.NewMemory(models.DefaultSettings(), prescribed), nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
}

// Notifier returns the email sender, or nil when SMTP is not configured
func (a *App) Notifier() scheduler.Notifier {
	if !a.Config.MailEnabled() {
		return nil
	}
	return email.NewSender(a.Config, a.Log)
}

// Close releases database and redis connections
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && err != redis.ErrClosed {
			a.Log.Warnf("Close failed: %v", err)
		}
	}
	a.closers = nil
}
