package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"Niveshak/internal/calculator"
)

// DefaultPath is read when CONFIG_PATH and --config are unset.
const DefaultPath = "configs/config.yaml"

// Providers accepted by data_source.provider.
var Providers = []string{"nse", "yahoo", "mock"}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// LogConfig selects logger level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ScheduleEntry posts a watchlist report on a cron spec (with seconds).
type ScheduleEntry struct {
	Cron      string `yaml:"cron"`
	Watchlist string `yaml:"watchlist"`
}

// Config holds all application configuration.
type Config struct {
	Log        LogConfig `yaml:"log"`
	DataSource struct {
		Provider     string `yaml:"provider"`
		Proxy        string `yaml:"proxy"`
		SymbolSuffix string `yaml:"symbol_suffix"`
	} `yaml:"data_source"`
	Batch struct {
		Workers       int           `yaml:"workers"`
		Timeout       time.Duration `yaml:"timeout"`
		LookbackDays  int           `yaml:"lookback_days"`
		RetryAttempts int           `yaml:"retry_attempts"`
		RetryBackoff  time.Duration `yaml:"retry_backoff"`
	} `yaml:"batch"`
	Indicators struct {
		StochasticPreset string  `yaml:"stochastic_preset"`
		BreakoutBand     float64 `yaml:"breakout_band"`
	} `yaml:"indicators"`
	Watchlists struct {
		Dir string `yaml:"dir"`
	} `yaml:"watchlists"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule []ScheduleEntry `yaml:"schedule"`
	HTTP     struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
}

// Path resolves the config file: flag first, then CONFIG_PATH, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("NIVESHAK_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("NIVESHAK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("NIVESHAK_WATCHLIST_DIR"); v != "" {
		c.Watchlists.Dir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.DataSource.Proxy = v
	}
	if v := os.Getenv("NIVESHAK_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NIVESHAK_WORKERS: %w", err)
		}
		c.Batch.Workers = n
	}
	if v := os.Getenv("NIVESHAK_LOOKBACK_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NIVESHAK_LOOKBACK_DAYS: %w", err)
		}
		c.Batch.LookbackDays = n
	}
	if v := os.Getenv("NIVESHAK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NIVESHAK_TIMEOUT: %w", err)
		}
		c.Batch.Timeout = d
	}
	return nil
}

// applyDefaults leaves Workers alone when it was set, so an explicit 0 or a
// negative width still fails Validate.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "nse"
	}
	if c.DataSource.SymbolSuffix == "" {
		c.DataSource.SymbolSuffix = ".NS"
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = 10
	}
	if c.Batch.Timeout == 0 {
		c.Batch.Timeout = 120 * time.Second
	}
	if c.Batch.LookbackDays == 0 {
		c.Batch.LookbackDays = 180
	}
	if c.Batch.RetryAttempts == 0 {
		c.Batch.RetryAttempts = 3
	}
	if c.Batch.RetryBackoff == 0 {
		c.Batch.RetryBackoff = 3 * time.Second
	}
	if c.Indicators.StochasticPreset == "" {
		c.Indicators.StochasticPreset = calculator.StochasticAggressive.Name
	}
	if c.Indicators.BreakoutBand == 0 {
		c.Indicators.BreakoutBand = 7.5
	}
	if c.Watchlists.Dir == "" {
		c.Watchlists.Dir = "configs/watchlists"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: batch.workers must be at least 1, got %d", ErrInvalid, c.Batch.Workers)
	}
	if c.Batch.Timeout <= 0 {
		return fmt.Errorf("%w: batch.timeout must be positive", ErrInvalid)
	}
	if c.Batch.LookbackDays < 1 {
		return fmt.Errorf("%w: batch.lookback_days must be positive", ErrInvalid)
	}
	if c.Batch.RetryAttempts < 1 {
		return fmt.Errorf("%w: batch.retry_attempts must be at least 1", ErrInvalid)
	}
	if c.Batch.RetryBackoff < 0 {
		return fmt.Errorf("%w: batch.retry_backoff cannot be negative", ErrInvalid)
	}
	if !knownProvider(c.DataSource.Provider) {
		return fmt.Errorf("%w: unknown data_source.provider %q (want one of %s)",
			ErrInvalid, c.DataSource.Provider, strings.Join(Providers, ", "))
	}
	if _, err := calculator.PresetByName(c.Indicators.StochasticPreset); err != nil {
		return fmt.Errorf("%w: indicators.stochastic_preset: %v", ErrInvalid, err)
	}
	if c.Indicators.BreakoutBand < 0 {
		return fmt.Errorf("%w: indicators.breakout_band cannot be negative", ErrInvalid)
	}
	info, err := os.Stat(c.Watchlists.Dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: watchlists.dir %q is not a readable directory", ErrInvalid, c.Watchlists.Dir)
	}
	for i, s := range c.Schedule {
		if s.Cron == "" || s.Watchlist == "" {
			return fmt.Errorf("%w: schedule[%d] needs both cron and watchlist", ErrInvalid, i)
		}
	}
	return nil
}

// ValidateTelegram checks the bot settings needed by the serve command.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("%w: telegram.bot_token is required", ErrInvalid)
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("%w: telegram.chat_id is required", ErrInvalid)
	}
	return nil
}

func knownProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}
