// Package config loads the gateway configuration: built-in defaults, then an
// optional YAML file, then NEWSVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendNNTP  = "nntp"
	BackendSpool = "spool"
)

const envPrefix = "NEWSVIEW_"

// Config is the gateway configuration.
type Config struct {
	Listen          string `yaml:"listen"`
	MetricsListen   string `yaml:"metrics_listen"`
	LogLevel        string `yaml:"log_level"`
	Backend         string `yaml:"backend"`
	NNTP            NNTP   `yaml:"nntp"`
	Spool           Spool  `yaml:"spool"`
	Group           string `yaml:"group"`
	DisplayTimezone string `yaml:"display_timezone"`
	ReplyURL        string `yaml:"reply_url"`
}

// NNTP locates the news server.
type NNTP struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// Spool locates the mbox spool directory.
type Spool struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:   ":8000",
		LogLevel: "info",
		Backend:  BackendNNTP,
		NNTP: NNTP{
			Host:    "nntp.example.org",
			Port:    119,
			Timeout: 30 * time.Second,
		},
		Spool: Spool{Path: "."},
		Group: "sharknews",
	}
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overrideFromEnv() error {
	setString(&c.Listen, "LISTEN")
	setString(&c.MetricsListen, "METRICS_LISTEN")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Backend, "BACKEND")
	setString(&c.NNTP.Host, "NNTP_HOST")
	setString(&c.Spool.Path, "SPOOL_PATH")
	setString(&c.Group, "GROUP")
	setString(&c.DisplayTimezone, "DISPLAY_TIMEZONE")
	setString(&c.ReplyURL, "REPLY_URL")

	if v, ok := lookup("NNTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sNNTP_PORT: %w", envPrefix, err)
		}
		c.NNTP.Port = port
	}
	if v, ok := lookup("NNTP_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sNNTP_TIMEOUT: %w", envPrefix, err)
		}
		c.NNTP.Timeout = d
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.Backend {
	case BackendNNTP:
		if c.NNTP.Host == "" {
			return fmt.Errorf("nntp.host must not be empty")
		}
		if c.NNTP.Port <= 0 || c.NNTP.Port > 65535 {
			return fmt.Errorf("nntp.port %d out of range", c.NNTP.Port)
		}
		if c.NNTP.Timeout <= 0 {
			return fmt.Errorf("nntp.timeout must be positive")
		}
	case BackendSpool:
		if c.Spool.Path == "" {
			return fmt.Errorf("spool.path must not be empty")
		}
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendNNTP, BackendSpool, c.Backend)
	}
	if c.Group == "" {
		return fmt.Errorf("group must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("display_timezone: %w", err)
	}
	if c.ReplyURL != "" {
		if _, err := url.Parse(c.ReplyURL); err != nil {
			return fmt.Errorf("reply_url: %w", err)
		}
	}
	return nil
}

// NNTPAddr is the host:port of the news server.
func (c *Config) NNTPAddr() string {
	return net.JoinHostPort(c.NNTP.Host, strconv.Itoa(c.NNTP.Port))
}

// Location returns the display time zone, or nil when dates are shown as
// sent.
func (c *Config) Location() (*time.Location, error) {
	if c.DisplayTimezone == "" {
		return nil, nil
	}
	return time.LoadLocation(c.DisplayTimezone)
}
