package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when the config file omits a field.
const (
	DefaultPollInterval = 15 * time.Second
	DefaultExchange     = "commshub.events"
)

// Config is the hub configuration file (~/.commshub/config.toml).
type Config struct {
	// ViewerID is the acting user the daemon triages for.
	ViewerID string `toml:"viewer_id"`
	// StatusStoreDSN selects the status backend: a sqlite path,
	// postgres:// URL or memory:.
	StatusStoreDSN string `toml:"status_store_dsn"`
	// PollIntervalSeconds is the refresh cadence.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	// AMQPURL enables the broker notifier when non-empty.
	AMQPURL string `toml:"amqp_url"`
	// AMQPExchange is the topic exchange events publish to.
	AMQPExchange string `toml:"amqp_exchange"`
	// LogPath is the daemon log file.
	LogPath string `toml:"log_path"`
}

// PollInterval returns the refresh cadence with the default applied.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Exchange returns the AMQP exchange with the default applied.
func (c *Config) Exchange() string {
	if c.AMQPExchange == "" {
		return DefaultExchange
	}
	return c.AMQPExchange
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
