package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "PD_"

type (
	Config struct {
		TelegramAPIToken string   `env:"TOKEN,required"`
		DefaultLanguage  string   `env:"LANG,default=en"`
		EnabledHandlers  []string `env:"HANDLERS,default=membership,commands,guard"`
		LogLevel         int      `env:"LOG_LEVEL,default=4"`
		DotPath          string   `env:"DOT_PATH,default=~/.princessdaina"`
		DBName           string   `env:"DB_NAME,default=bot.db"`
		OwnerID          int64    `env:"OWNER_ID"`
		Spam             Spam
		Warn             Warn
		Actions          Actions
		Cache            Cache
		Metrics          Metrics
	}

	Spam struct {
		Window    time.Duration `env:"SPAM_WINDOW,default=6s"`
		Threshold int           `env:"SPAM_THRESHOLD,default=6"`
		Slack     int           `env:"SPAM_SLACK,default=3"`
		IdleTTL   time.Duration `env:"SPAM_IDLE_TTL,default=5m"`
	}

	Warn struct {
		Limit        int           `env:"WARN_LIMIT,default=3"`
		MuteDuration time.Duration `env:"WARN_MUTE,default=24h"`
	}

	Actions struct {
		Timeout           time.Duration `env:"ACTION_TIMEOUT,default=10s"`
		RequestsPerSecond float64       `env:"ACTION_RPS,default=25"`
	}

	Cache struct {
		SettingsTTL time.Duration `env:"SETTINGS_CACHE_TTL,default=30s"`
		AdminTTL    time.Duration `env:"ADMIN_CACHE_TTL,default=1m"`
		Size        int           `env:"CACHE_SIZE,default=4096"`
	}

	Metrics struct {
		Addr string `env:"METRICS_ADDR,default=:2112"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
		if err != nil {
			globalErr = err
			return
		}
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

// LoadWith processes the prefixed environment from an arbitrary lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	envcfg := envconfig.Config{
		Lookuper: envconfig.PrefixLookuper(envPrefix, lookuper),
		Target:   cfg,
	}
	if err := envconfig.ProcessWith(ctx, &envcfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	dotPath, err := homedir.Expand(cfg.DotPath)
	if err != nil {
		return nil, fmt.Errorf("expand dot path: %w", err)
	}
	cfg.DotPath = dotPath
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Spam.Window <= 0:
		return fmt.Errorf("spam window must be positive, got %s", c.Spam.Window)
	case c.Spam.Threshold < 1:
		return fmt.Errorf("spam threshold must be at least 1, got %d", c.Spam.Threshold)
	case c.Spam.Slack < 1:
		return fmt.Errorf("spam slack must be at least 1, got %d", c.Spam.Slack)
	case c.Warn.Limit < 1:
		return fmt.Errorf("warn limit must be at least 1, got %d", c.Warn.Limit)
	case c.Actions.Timeout <= 0:
		return fmt.Errorf("action timeout must be positive, got %s", c.Actions.Timeout)
	}
	return nil
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
