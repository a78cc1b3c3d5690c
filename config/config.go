package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yaml"
	DefaultBaseURL    = "https://api.forecast.io/forecast"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Forecast ForecastConfig `yaml:"forecast"`
}

type AppConfig struct {
	Name    string `yaml:"name" envconfig:"APP_NAME" validate:"required"`
	Version string `yaml:"version" envconfig:"APP_VERSION" validate:"required"`
	Env     string `yaml:"env" envconfig:"APP_ENV" validate:"oneof=development dev test prod"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" envconfig:"SERVER_PORT" validate:"required,numeric"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

type LogConfig struct {
	Level     string `yaml:"level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	SentryDSN string `yaml:"sentry_dsn" envconfig:"SENTRY_DSN"`
}

// ForecastConfig is the endpoint configuration. Exactly one of APIKey and
// ProxyURL is set.
type ForecastConfig struct {
	APIKey         string        `yaml:"api_key,omitempty" envconfig:"FORECAST_API_KEY" validate:"required_without=ProxyURL,excluded_with=ProxyURL"`
	ProxyURL       string        `yaml:"proxy_url,omitempty" envconfig:"FORECAST_PROXY_URL" validate:"omitempty,url"`
	BaseURL        string        `yaml:"base_url" envconfig:"FORECAST_BASE_URL" validate:"required,url"`
	Units          string        `yaml:"units" envconfig:"FORECAST_UNITS" validate:"omitempty,oneof=auto ca uk uk2 us si"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"FORECAST_REQUEST_TIMEOUT" validate:"gt=0"`
}

// Provider loads and validates a Config.
type Provider interface {
	Load() (*Config, error)
	Validate(config *Config) error
}

// FileConfigProvider layers defaults, an optional .env file, an optional
// YAML file and the environment, in that order.
type FileConfigProvider struct {
	path     string
	envFile  string
	validate *validator.Validate
}

func NewFileConfigProvider(path string) *FileConfigProvider {
	return &FileConfigProvider{
		path:     path,
		envFile:  ".env",
		validate: validator.New(),
	}
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:    "forecastio",
			Version: "1.0.0",
			Env:     "development",
		},
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Forecast: ForecastConfig{
			BaseURL:        DefaultBaseURL,
			RequestTimeout: 10 * time.Second,
		},
	}
}

func (p *FileConfigProvider) Load() (*Config, error) {
	cnf := defaults()

	if err := godotenv.Load(p.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", p.envFile, err)
	}

	if err := p.loadFromFile(cnf); err != nil {
		return nil, err
	}

	// Environment wins over the file.
	if err := envconfig.Process("", cnf); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	return cnf, nil
}

// loadFromFile is a no-op when the file does not exist.
func (p *FileConfigProvider) loadFromFile(cnf *Config) error {
	yamlData, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", p.path, err)
	}

	if err := yaml.Unmarshal(yamlData, cnf); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

func (p *FileConfigProvider) Validate(cnf *Config) error {
	err := p.validate.Struct(cnf)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	name := configKey(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "required_without", "excluded_with":
		return "exactly one of forecast.api_key and forecast.proxy_url must be set"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

// configKey turns "Config.App.Name" into "app.name".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}

// NewConfig loads the configuration from CONFIG_PATH (or config/config.yaml)
// and the environment.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}
	return NewConfigWithProvider(NewFileConfigProvider(path))
}

func NewConfigWithProvider(provider Provider) (*Config, error) {
	cnf, err := provider.Load()
	if err != nil {
		return nil, err
	}

	if err := provider.Validate(cnf); err != nil {
		return nil, err
	}

	return cnf, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development" || c.App.Env == "dev"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "prod"
}

// ProxyMode reports whether requests go through a proxy instead of carrying
// the API key themselves.
func (c *Config) ProxyMode() bool {
	return c.Forecast.ProxyURL != ""
}
