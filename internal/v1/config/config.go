// Package config loads server configuration from command-line flags and
// CHAT_-prefixed environment variables, flags taking precedence.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults for the TCP listener.
const (
	DefaultIP   = "127.0.0.1"
	DefaultPort = 42069
)

// Config holds validated runtime configuration.
type Config struct {
	// TCP listener
	IP   string `mapstructure:"ip"`
	Port int    `mapstructure:"port"`

	// Ops HTTP listener (health + metrics). Empty disables it.
	OpsAddr string `mapstructure:"ops-addr"`

	// Logging
	LogLevel string `mapstructure:"log-level"`
	Dev      bool   `mapstructure:"dev"`
}

// Load parses args (excluding the program name), overlays CHAT_* environment
// variables, and validates the result. Returns pflag.ErrHelp wrapped when
// -h/--help was requested.
func Load(name string, args []string) (*Config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("ip", "i", DefaultIP, "address to listen on")
	fs.Uint16P("port", "p", DefaultPort, "port to listen on")
	fs.String("ops-addr", "", "ops HTTP listen address for health and metrics (disabled when empty)")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.Bool("dev", false, "development mode: human-readable colored logs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("ip", DefaultIP)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("ops-addr", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("dev", false)

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks every field and reports all problems at once.
func (c *Config) validate() error {
	var errs []string

	if net.ParseIP(c.IP) == nil {
		errs = append(errs, fmt.Sprintf("ip must be a valid IPv4 or IPv6 address (got %q)", c.IP))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be between 1 and 65535 (got %d)", c.Port))
	}
	if c.OpsAddr != "" && !isValidHostPort(c.OpsAddr) {
		errs = append(errs, fmt.Sprintf("ops-addr must be in 'host:port' form (got %q)", c.OpsAddr))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Addr returns the TCP listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

// OpsEnabled reports whether the ops HTTP listener should run.
func (c *Config) OpsEnabled() bool {
	return c.OpsAddr != ""
}

// isValidHostPort checks that addr splits into a host and a numeric port.
func isValidHostPort(addr string) bool {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return false
	}
	return host != ""
}
