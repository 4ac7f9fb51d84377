package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chatwire/chatwire/internal/v1/names"
)

// Load-generator defaults mirror the standard stress run: a handful of
// chatty bots plus a hundred flooders.
const (
	DefaultCasualBots    = 3
	DefaultTopicalBots   = 3
	DefaultTopic         = "rust"
	DefaultFloodBots     = 100
	DefaultFloodMessages = 100000
)

// BotsConfig holds validated load-generator configuration.
type BotsConfig struct {
	// Addr is the chat server to dial.
	Addr string `mapstructure:"addr"`

	// Swarm composition.
	Casual  int    `mapstructure:"casual"`
	Topical int    `mapstructure:"topical"`
	Topic   string `mapstructure:"topic"`
	Flood   int    `mapstructure:"flood"`

	// FloodMessages is the number of lines each flood bot sends, the
	// closing /quit included.
	FloodMessages int `mapstructure:"flood-messages"`

	// Report enables periodic CPU/RSS logging when positive.
	Report time.Duration `mapstructure:"report"`

	// Logging
	LogLevel string `mapstructure:"log-level"`
	Dev      bool   `mapstructure:"dev"`
}

// LoadBots parses args (excluding the program name), overlays CHAT_*
// environment variables, and validates the result. Returns pflag.ErrHelp
// wrapped when -h/--help was requested.
func LoadBots(name string, args []string) (*BotsConfig, error) {
	defaultAddr := net.JoinHostPort(DefaultIP, strconv.Itoa(DefaultPort))

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("addr", defaultAddr, "chat server address to dial")
	fs.Int("casual", DefaultCasualBots, "number of bots chatting in main")
	fs.Int("topical", DefaultTopicalBots, "number of bots that join --topic first")
	fs.String("topic", DefaultTopic, "room the topical bots join")
	fs.Int("flood", DefaultFloodBots, "number of stress-test flood bots")
	fs.Int("flood-messages", DefaultFloodMessages, "lines each flood bot sends")
	fs.Duration("report", 0, "interval between CPU/RSS reports (0 disables)")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.Bool("dev", false, "development mode: human-readable colored logs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("addr", defaultAddr)
	v.SetDefault("casual", DefaultCasualBots)
	v.SetDefault("topical", DefaultTopicalBots)
	v.SetDefault("topic", DefaultTopic)
	v.SetDefault("flood", DefaultFloodBots)
	v.SetDefault("flood-messages", DefaultFloodMessages)
	v.SetDefault("report", time.Duration(0))
	v.SetDefault("log-level", "info")
	v.SetDefault("dev", false)

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &BotsConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validateBots(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateBots checks every field and reports all problems at once.
func (c *BotsConfig) validateBots() error {
	var errs []string

	if !isValidHostPort(c.Addr) {
		errs = append(errs, fmt.Sprintf("addr must be in 'host:port' form (got %q)", c.Addr))
	}
	if c.Casual < 0 || c.Topical < 0 || c.Flood < 0 {
		errs = append(errs, "bot counts must not be negative")
	}
	if !names.Valid(c.Topic) {
		errs = append(errs, fmt.Sprintf("topic must be a valid room name (got %q)", c.Topic))
	}
	// Two lines minimum: the /join that opens the script and the /quit that
	// ends it.
	if c.FloodMessages < 2 {
		errs = append(errs, fmt.Sprintf("flood-messages must be at least 2 (got %d)", c.FloodMessages))
	}
	if c.Report < 0 {
		errs = append(errs, "report interval must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Bots reports how many connections the swarm will open.
func (c *BotsConfig) Bots() int {
	return c.Casual + c.Topical + c.Flood
}

// ReportEnabled reports whether periodic resource logging should run.
func (c *BotsConfig) ReportEnabled() bool {
	return c.Report > 0
}
