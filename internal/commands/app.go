package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"Niveshak/internal/batch"
	"Niveshak/internal/calculator"
	"Niveshak/internal/collector"
	"Niveshak/internal/config"
	"Niveshak/internal/logging"
	"Niveshak/internal/metrics"
	"Niveshak/internal/strategy"
	"Niveshak/internal/watchlist"
)

// app is the wired dependency graph shared by the subcommands.
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	metrics *metrics.Metrics
	lists   *watchlist.Dir
	scanner *batch.Scanner
}

// loadConfig reads the config and applies command line overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(config.Path(flags.configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.provider != "" {
		cfg.DataSource.Provider = flags.provider
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	logger.WithField("provider", provider.Name()).Info("data source selected")

	m := metrics.New()
	acq, err := collector.NewAcquirer(provider, collector.NewCache(m), collector.Options{
		Attempts:     cfg.Batch.RetryAttempts,
		Backoff:      cfg.Batch.RetryBackoff,
		LookbackDays: cfg.Batch.LookbackDays,
		Logger:       logging.WithComponent(logger, "collector"),
		Metrics:      m,
	})
	if err != nil {
		return nil, err
	}

	preset, err := calculator.PresetByName(cfg.Indicators.StochasticPreset)
	if err != nil {
		return nil, err
	}
	params := calculator.DefaultParams()
	params.Stochastic = preset

	orch, err := batch.New(acq, strategy.NewClassifier(cfg.Indicators.BreakoutBand), batch.Options{
		Workers: cfg.Batch.Workers,
		Timeout: cfg.Batch.Timeout,
		Params:  params,
		Logger:  logging.WithComponent(logger, "batch"),
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	lists, err := watchlist.NewDir(cfg.Watchlists.Dir)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		lists:   lists,
		scanner: batch.NewScanner(orch, lists, logging.WithComponent(logger, "scanner")),
	}, nil
}

func newProvider(cfg *config.Config) (collector.Provider, error) {
	switch cfg.DataSource.Provider {
	case "nse":
		return collector.NewNSEFetcher(cfg.DataSource.Proxy), nil
	case "yahoo":
		return collector.NewYahooFetcher(cfg.DataSource.SymbolSuffix, cfg.DataSource.Proxy), nil
	case "mock":
		return collector.NewMockProvider(1000), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalid, cfg.DataSource.Provider)
	}
}
