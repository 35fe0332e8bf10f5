package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/stockview/internal/clients/stockapi"
	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/interfaces"
	"github.com/bobmcallan/stockview/internal/services/market"
	"github.com/bobmcallan/stockview/internal/services/notify"
	"github.com/bobmcallan/stockview/internal/services/portfolio"
	"github.com/bobmcallan/stockview/internal/services/pricing"
	"github.com/bobmcallan/stockview/internal/storage/prefs"
)

// App holds all initialized services and clients.
// It is the shared core used by both cmd/stockview-server and cmd/stockview.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Backend     interfaces.BackendClient
	Prices      *pricing.Lookup
	Market      *market.Service
	Portfolio   *portfolio.ViewModel
	Notifier    *notify.Service
	Hub         *notify.Hub
	Prefs       interfaces.PrefsStore
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes everything.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config path: argument, STOCKVIEW_CONFIG, binary dir, then development fallback
	if configPath == "" {
		configPath = os.Getenv("STOCKVIEW_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "stockview.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stockview.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Storage.PrefsPath != "" && !filepath.IsAbs(config.Storage.PrefsPath) {
		config.Storage.PrefsPath = filepath.Join(binDir, config.Storage.PrefsPath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewWithConfig(config, logger)
}

// NewWithConfig initializes services from an already loaded config.
func NewWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	start := time.Now()

	var store interfaces.PrefsStore
	if config.Storage.PrefsPath != "" {
		s, err := prefs.NewStore(logger, config.Storage.PrefsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize prefs: %w", err)
		}
		store = s
	} else {
		logger.Info().Msg("No prefs path configured, last portfolio will not be remembered")
		store = prefs.NewMemoryStore()
	}

	backend := stockapi.NewClient(
		stockapi.WithBaseURL(config.Backend.BaseURL),
		stockapi.WithLogger(logger),
		stockapi.WithRateLimit(config.Backend.RateLimit),
		stockapi.WithTimeout(config.Backend.GetTimeout()),
	)

	notifier := notify.NewService(logger, nil)
	prices := pricing.NewLookup(backend, logger, config.Backend.PriceConcurrency)

	vm := portfolio.NewViewModel(backend, prices, notifier, store, logger, portfolio.Config{
		Strategy:    config.Portfolio.Strategy,
		DefaultName: config.Portfolio.DefaultName,
	})

	a := &App{
		Config:      config,
		Logger:      logger,
		Backend:     backend,
		Prices:      prices,
		Market:      market.NewService(backend, logger),
		Portfolio:   vm,
		Notifier:    notifier,
		Prefs:       store,
		StartupTime: start,
	}

	logger.Info().
		Str("backend", config.Backend.BaseURL).
		Str("strategy", config.Portfolio.Strategy).
		Dur("startup", time.Since(start)).
		Msg("App initialized")

	return a, nil
}

// StartHub starts the websocket toast hub and routes notifications to it.
func (a *App) StartHub() {
	if a.Hub != nil {
		return
	}
	a.Hub = notify.NewHub(a.Logger)
	go a.Hub.Run()
	a.Notifier.SetPublisher(a.Hub)
}

// ResolvePortfolio resolves the configured (or remembered) portfolio,
// creating one when the backend does not know it.
func (a *App) ResolvePortfolio(ctx context.Context) error {
	return a.Portfolio.ResolveOrCreate(ctx, a.Config.Portfolio.DefaultID, a.Config.Portfolio.DefaultName)
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Hub != nil {
		a.Hub.Stop()
		a.Hub = nil
	}
	if a.Prefs != nil {
		if err := a.Prefs.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close prefs store")
		}
		a.Prefs = nil
	}
}
