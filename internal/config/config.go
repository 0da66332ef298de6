package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API     *APIConfig     `mapstructure:"api"`
	Gin     *GinConfig     `mapstructure:"gin"`
	Backend *BackendConfig `mapstructure:"backend"`
	Storage *StorageConfig `mapstructure:"storage"`
	Polling *PollingConfig `mapstructure:"polling"`
	Board   *BoardConfig   `mapstructure:"board"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Host               string   `mapstructure:"host"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	LoginRatePerMinute int      `mapstructure:"login_rate_per_minute"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

// BackendConfig points at the club REST backend the console fronts.
type BackendConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	LoginPath   string        `mapstructure:"login_path"`
	RefreshPath string        `mapstructure:"refresh_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// LegacyOverridesFile is an older JSON override file imported once at startup.
	LegacyOverridesFile string `mapstructure:"legacy_overrides_file"`
}

type PollingConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	MinCooldown    time.Duration `mapstructure:"min_cooldown"`
	InteractionTTL time.Duration `mapstructure:"interaction_ttl"`
}

type BoardConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

func Load(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	return decode(v)
}

// Watch reloads the config file whenever it changes and hands the new config to onChange.
// Invalid reloads are logged and skipped.
func Watch(path string, onChange func(conf *AppConfig)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		conf, err := decode(v)
		if err != nil {
			zap.L().Warn("ignoring invalid config reload", zap.String("file", e.Name), zap.Error(err))
			return
		}

		zap.L().Info("config reloaded", zap.String("file", e.Name))
		onChange(conf)
	})
	v.WatchConfig()

	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.login_rate_per_minute", 10)

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("backend.base_url", "http://localhost:5000/api")
	v.SetDefault("backend.login_path", "/auth/login")
	v.SetDefault("backend.refresh_path", "/auth/refresh")
	v.SetDefault("backend.timeout", "30s")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "console.db")
	v.SetDefault("storage.legacy_overrides_file", "")

	v.SetDefault("polling.interval", "30s")
	v.SetDefault("polling.min_cooldown", "10s")
	v.SetDefault("polling.interaction_ttl", "10m")

	v.SetDefault("board.tick", "1s")
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.API, validation.Required),
		validation.Field(&c.Gin, validation.Required),
		validation.Field(&c.Backend, validation.Required),
		validation.Field(&c.Storage, validation.Required),
		validation.Field(&c.Polling, validation.Required),
		validation.Field(&c.Board, validation.Required),
	)
}

func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Environment, validation.Required, validation.In("development", "production", "test")),
		validation.Field(&c.Host, validation.Required, is.Host),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.LoginRatePerMinute, validation.Min(1)),
	)
}

func (c *GinConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Mode, validation.Required, validation.In("debug", "release", "test")),
	)
}

func (c *BackendConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.LoginPath, validation.Required),
		validation.Field(&c.RefreshPath, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Driver, validation.Required, validation.In("sqlite", "postgres", "mysql")),
		validation.Field(&c.DSN, validation.Required),
	)
}

func (c *PollingConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Interval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MinCooldown, validation.Min(time.Duration(0))),
		validation.Field(&c.InteractionTTL, validation.Required),
	)
}

func (c *BoardConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Tick, validation.Required, validation.Min(100*time.Millisecond)),
	)
}
