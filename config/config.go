package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alandotcom/sweepy/holiday"
)

const DefaultPath = "sweepy.yml"

type TelegramConfig struct {
	// Token comes from TELEGRAM_BOT_TOKEN when set.
	Token string `yaml:"token"`
}

type ArcGISConfig struct {
	// APIKey comes from ARCGIS_API_KEY when set. Optional, raises
	// the geocoder's free quota.
	APIKey     string `yaml:"api_key"`
	GeocodeURL string `yaml:"geocode_url" validate:"omitempty,url"`
	RoutesURL  string `yaml:"routes_url" validate:"omitempty,url"`
}

type WebConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	ArcGIS   ArcGISConfig   `yaml:"arcgis"`
	Web      WebConfig      `yaml:"web"`

	// Empty disables the metrics listener.
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`

	// Path to a routes CSV snapshot. When set, lookups use it
	// instead of the live FeatureServer.
	Snapshot string `yaml:"snapshot"`

	// Year to ISO dates, layered over the built-in table.
	Holidays map[int][]string `yaml:"holidays"`
}

// Loads configuration: .env, then the YAML file, then environment
// overrides for secrets. A missing file is only an error when the
// path was given explicitly.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if key := os.Getenv("ARCGIS_API_KEY"); key != "" {
		cfg.ArcGIS.APIKey = key
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Web.Addr = ":" + port
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}

	if cfg.Web.Addr == "" {
		cfg.Web.Addr = ":8080"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// The process holiday calendar: built-in table with configured years
// layered over it.
func (c *Config) HolidayCalendar() (holiday.Calendar, error) {
	configured, err := holiday.FromConfig(c.Holidays)
	if err != nil {
		return nil, fmt.Errorf("parsing holidays: %w", err)
	}
	return holiday.LosAngeles().Merge(configured), nil
}
