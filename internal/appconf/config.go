// Package appconf loads the service configuration from a YAML file with
// environment overrides.
package appconf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort           = 4000
	DefaultStaticSchedule = "@every 6h"
	DefaultCachePath      = "data/gtfs.zip"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultAPIKeyHeader   = "x-api-key"
)

// Config is the root configuration document.
type Config struct {
	EnvName  string         `yaml:"env" validate:"omitempty,oneof=development test production prod"`
	Env      Environment    `yaml:"-"`
	Server   ServerConfig   `yaml:"server"`
	Static   StaticConfig   `yaml:"static"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit int `yaml:"rateLimit" validate:"gte=0"`
	// TrustedProxies lists the addresses or CIDR ranges of reverse proxies
	// whose X-Forwarded-For header identifies the client.
	TrustedProxies []string `yaml:"trustedProxies" validate:"dive,cidr|ip"`
}

// StaticConfig describes the static schedule source. URL is either an
// http(s) URL or a local archive path.
type StaticConfig struct {
	URL         string        `yaml:"url" validate:"required"`
	FeedInfoURL string        `yaml:"feedInfoURL" validate:"omitempty,url"`
	CachePath   string        `yaml:"cachePath"`
	Schedule    string        `yaml:"schedule"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
}

type RealtimeConfig struct {
	AlertsURL           string `yaml:"alertsURL" validate:"omitempty,url"`
	TripUpdatesURL      string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	APIKeyHeader        string `yaml:"apiKeyHeader"`
	APIKey              string `yaml:"apiKey"`

	AlertsInterval      time.Duration `yaml:"alertsInterval" validate:"gte=0"`
	VehiclesInterval    time.Duration `yaml:"vehiclesInterval" validate:"gte=0"`
	TripUpdatesInterval time.Duration `yaml:"tripUpdatesInterval" validate:"gte=0"`
	ForcedAlertsEvery   time.Duration `yaml:"forcedAlertsEvery" validate:"gte=0"`
	Timeout             time.Duration `yaml:"timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json text"`
	Verbose bool   `yaml:"verbose"`
}

// envOverrides maps environment variables onto config fields.
var envOverrides = map[string]func(*Config, string){
	"RTI_ENV":                   func(c *Config, v string) { c.EnvName = v },
	"RTI_GTFS_URL":              func(c *Config, v string) { c.Static.URL = v },
	"RTI_FEED_INFO_URL":         func(c *Config, v string) { c.Static.FeedInfoURL = v },
	"RTI_CACHE_PATH":            func(c *Config, v string) { c.Static.CachePath = v },
	"RTI_ALERTS_URL":            func(c *Config, v string) { c.Realtime.AlertsURL = v },
	"RTI_TRIP_UPDATES_URL":      func(c *Config, v string) { c.Realtime.TripUpdatesURL = v },
	"RTI_VEHICLE_POSITIONS_URL": func(c *Config, v string) { c.Realtime.VehiclePositionsURL = v },
	"RTI_API_KEY":               func(c *Config, v string) { c.Realtime.APIKey = v },
	"RTI_LOG_LEVEL":             func(c *Config, v string) { c.Log.Level = v },
}

// Load reads and validates the configuration file at path. Environment
// variables override the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data, os.Getenv)
}

// Parse decodes a YAML document, applies overrides from getenv, validates
// the result and fills in defaults.
func Parse(data []byte, getenv func(string) string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return Finalize(cfg, getenv)
}

// Finalize applies environment overrides, validates and fills in defaults.
// Callers that build a Config from flags use it in place of Parse.
func Finalize(cfg Config, getenv func(string) string) (Config, error) {
	if getenv != nil {
		for key, apply := range envOverrides {
			if value := getenv(key); value != "" {
				apply(&cfg, value)
			}
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	c.Env = EnvFlagToEnvironment(c.EnvName)
	if c.EnvName == "" {
		c.EnvName = c.Env.String()
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Static.Schedule == "" {
		c.Static.Schedule = DefaultStaticSchedule
	}
	if c.Static.CachePath == "" {
		c.Static.CachePath = DefaultCachePath
	}
	if c.Realtime.APIKeyHeader == "" {
		c.Realtime.APIKeyHeader = DefaultAPIKeyHeader
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	return c
}
