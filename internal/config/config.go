// Package config handles timesource configuration loading.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/timesource/config.yaml, /etc/timesource/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "timesource", "config.yaml"))
	}

	paths = append(paths, "/etc/timesource/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all timesource configuration.
type Config struct {
	Broker    BrokerConfig  `yaml:"broker"`
	Publish   PublishConfig `yaml:"publish"`
	DataDir   string        `yaml:"data_dir"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"` // "text" (default) or "json"
}

// BrokerConfig defines the MQTT broker connection settings.
type BrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"` // Default: 1883
	TLS      bool   `yaml:"tls"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Address returns the host:port dial target for the broker.
func (b BrokerConfig) Address() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// Configured reports whether a broker host has been set.
func (b BrokerConfig) Configured() bool {
	return b.Host != ""
}

// PublishConfig defines the publish cadence and session identity.
type PublishConfig struct {
	// TopicPrefix is the base topic; timestamps go to {TopicPrefix}/time.
	TopicPrefix string `yaml:"topic_prefix"`
	// IntervalSec is the seconds between timestamp publishes (default 60).
	IntervalSec int `yaml:"interval_sec"`
	// ConnectTimeoutSec bounds how long a single connect attempt may
	// wait for the broker's CONNACK (default 10).
	ConnectTimeoutSec int `yaml:"connect_timeout_sec"`
	// RetryCooldownSec is the fixed wait after a failed reconnect
	// attempt before the next one (default 30).
	RetryCooldownSec int `yaml:"retry_cooldown_sec"`
	// ClientID is the MQTT client identifier. When empty, a stable ID
	// is generated once and persisted under data_dir.
	ClientID string `yaml:"client_id"`
}

// Interval returns the publish interval as a duration.
func (p PublishConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSec) * time.Second
}

// ConnectTimeout returns the connect timeout as a duration.
func (p PublishConfig) ConnectTimeout() time.Duration {
	return time.Duration(p.ConnectTimeoutSec) * time.Second
}

// RetryCooldown returns the reconnect cooldown as a duration.
func (p PublishConfig) RetryCooldown() time.Duration {
	return time.Duration(p.RetryCooldownSec) * time.Second
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration. Broker host is left empty;
// Validate rejects configs without one.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{Port: 1883},
		Publish: PublishConfig{
			TopicPrefix:       "tc001",
			IntervalSec:       60,
			ConnectTimeoutSec: 10,
			RetryCooldownSec:  30,
		},
		DataDir: ".",
	}
}

// Validate checks that the configuration is usable. It returns the
// first problem found.
func (c *Config) Validate() error {
	if !c.Broker.Configured() {
		return fmt.Errorf("broker.host is required")
	}
	if c.Broker.Port <= 0 || c.Broker.Port > 65535 {
		return fmt.Errorf("broker.port %d out of range", c.Broker.Port)
	}
	if c.Publish.TopicPrefix == "" {
		return fmt.Errorf("publish.topic_prefix is required")
	}
	if c.Publish.IntervalSec <= 0 {
		return fmt.Errorf("publish.interval_sec must be positive, got %d", c.Publish.IntervalSec)
	}
	if c.Publish.ConnectTimeoutSec <= 0 {
		return fmt.Errorf("publish.connect_timeout_sec must be positive, got %d", c.Publish.ConnectTimeoutSec)
	}
	if c.Publish.RetryCooldownSec < 0 {
		return fmt.Errorf("publish.retry_cooldown_sec must not be negative, got %d", c.Publish.RetryCooldownSec)
	}
	return nil
}
