package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Store types.
const (
	StoreMemory   = "memory"
	StoreYAML     = "yaml"
	StoreDatabase = "database"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Practice  PracticeConfig  `mapstructure:"practice"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type StoreConfig struct {
	Type          string `mapstructure:"type" validate:"oneof=memory yaml database"`
	YAMLDirectory string `mapstructure:"yaml_directory" validate:"required_if=Type yaml"`
}

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port" validate:"min=0,max=65535"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	SSLMode         string            `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	Path            string            `mapstructure:"path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int               `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds" validate:"min=0"`
}

type PracticeConfig struct {
	// PassScore is the lowest pronunciation score that counts as a correct answer.
	PassScore         int `mapstructure:"pass_score" validate:"min=0,max=100"`
	MaxUpdateAttempts int `mapstructure:"max_update_attempts" validate:"min=1"`
}

type RemindersConfig struct {
	Enabled   bool           `mapstructure:"enabled"`
	Schedule  string         `mapstructure:"schedule" validate:"cron"`
	StartHour int            `mapstructure:"start_hour" validate:"min=0,max=23"`
	EndHour   int            `mapstructure:"end_hour" validate:"min=0,max=23,gtefield=StartHour"`
	MaxWords  int            `mapstructure:"max_words" validate:"min=1"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
	Webhook   WebhookConfig  `mapstructure:"webhook"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type WebhookConfig struct {
	URL      string `mapstructure:"url" validate:"omitempty,url"`
	Token    string `mapstructure:"token"`
	Attempts int    `mapstructure:"attempts" validate:"min=1"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/wordcoach")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("store.type", StoreMemory)
	v.SetDefault("store.yaml_directory", filepath.Join("data", "progress"))
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "wordcoach")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.path", "wordcoach.db")
	v.SetDefault("practice.pass_score", 70)
	v.SetDefault("practice.max_update_attempts", 3)
	v.SetDefault("reminders.schedule", "0 * * * *")
	v.SetDefault("reminders.start_hour", 9)
	v.SetDefault("reminders.end_hour", 21)
	v.SetDefault("reminders.max_words", 10)
	v.SetDefault("reminders.webhook.attempts", 3)

	// Secrets come from the environment only
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("reminders.telegram.token", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_BOT_TOKEN environment variable: %w", err)
	}
	if err := v.BindEnv("reminders.webhook.token", "WEBHOOK_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind WEBHOOK_TOKEN environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("validate configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
