package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"timepunch/timeentry"
)

const (
	KeyServiceURL          = "service.url"
	KeyServiceTimeout      = "service.timeout_seconds"
	KeyDirectoryURL        = "directory.url"
	KeyStoragePath         = "storage.path"
	KeyDefaultTrackingType = "tracking.default_type"
	KeyDefaultHourlyRate   = "billing.default_hourly_rate"
	KeySyncAutoReconcile   = "sync.auto_reconcile"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service" validate:"required"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Sync      SyncConfig      `mapstructure:"sync"`
}

type ServiceConfig struct {
	URL            string `mapstructure:"url" validate:"required,url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

type DirectoryConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type TrackingConfig struct {
	DefaultType string `mapstructure:"default_type"`
}

type BillingConfig struct {
	DefaultHourlyRate float64 `mapstructure:"default_hourly_rate" validate:"gte=0"`
}

type SyncConfig struct {
	AutoReconcile bool `mapstructure:"auto_reconcile"`
}

// Timeout returns the configured request timeout with a sane floor.
func (c ServiceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DirectoryURL falls back to the service URL when no dedicated directory
// endpoint is configured.
func (c *Config) DirectoryURL() string {
	if strings.TrimSpace(c.Directory.URL) != "" {
		return c.Directory.URL
	}
	return c.Service.URL
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# timepunch configuration
service:
  url: "https://timesheet.example.com"
  token: ""
  timeout_seconds: 10

directory:
  url: ""

storage:
  path: "timepunch.db"

tracking:
  default_type: "hourly"

billing:
  default_hourly_rate: 0

sync:
  auto_reconcile: true
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateTrackingType(cfg.Tracking.DefaultType); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServiceTimeout, 10)
	v.SetDefault(KeyStoragePath, "timepunch.db")
	v.SetDefault(KeyDefaultTrackingType, string(timeentry.TrackingHourly))
	v.SetDefault(KeyDefaultHourlyRate, 0.0)
	v.SetDefault(KeySyncAutoReconcile, true)
}

func validateTrackingType(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if _, ok := timeentry.ParseTrackingType(value); !ok {
		return fmt.Errorf(
			"validation failed: tracking.default_type %q is not supported (valid: hourly, daily, weekly, monthly)",
			value,
		)
	}
	return nil
}
