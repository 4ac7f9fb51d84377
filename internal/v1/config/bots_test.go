package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBotsDefaults(t *testing.T) {
	cfg, err := LoadBots("chat-bots", nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:42069", cfg.Addr)
	assert.Equal(t, 3, cfg.Casual)
	assert.Equal(t, 3, cfg.Topical)
	assert.Equal(t, "rust", cfg.Topic)
	assert.Equal(t, 100, cfg.Flood)
	assert.Equal(t, 100000, cfg.FloodMessages)
	assert.Equal(t, 106, cfg.Bots())
	assert.False(t, cfg.ReportEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadBotsFlags(t *testing.T) {
	cfg, err := LoadBots("chat-bots", []string{
		"--addr", "10.0.0.5:9000",
		"--casual", "1",
		"--topical", "0",
		"--topic", "gophers",
		"--flood", "2",
		"--flood-messages", "50",
		"--report", "5s",
		"--dev",
	})
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5:9000", cfg.Addr)
	assert.Equal(t, 1, cfg.Casual)
	assert.Equal(t, 0, cfg.Topical)
	assert.Equal(t, "gophers", cfg.Topic)
	assert.Equal(t, 2, cfg.Flood)
	assert.Equal(t, 50, cfg.FloodMessages)
	assert.Equal(t, 3, cfg.Bots())
	assert.Equal(t, 5*time.Second, cfg.Report)
	assert.True(t, cfg.ReportEnabled())
	assert.True(t, cfg.Dev)
}

func TestLoadBotsEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CHAT_ADDR", "example.test:7000")
	t.Setenv("CHAT_TOPIC", "stress-test")
	t.Setenv("CHAT_FLOOD_MESSAGES", "500")
	t.Setenv("CHAT_REPORT", "2s")

	cfg, err := LoadBots("chat-bots", nil)
	require.NoError(t, err)

	assert.Equal(t, "example.test:7000", cfg.Addr)
	assert.Equal(t, "stress-test", cfg.Topic)
	assert.Equal(t, 500, cfg.FloodMessages)
	assert.Equal(t, 2*time.Second, cfg.Report)
}

func TestLoadBotsInvalidAddr(t *testing.T) {
	_, err := LoadBots("chat-bots", []string{"--addr", "no-port-here"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "addr must be in")
}

func TestLoadBotsNegativeCount(t *testing.T) {
	_, err := LoadBots("chat-bots", []string{"--casual", "-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot counts")
}

func TestLoadBotsBadTopic(t *testing.T) {
	for _, topic := range []string{"x", "bad room", "has!punct"} {
		_, err := LoadBots("chat-bots", []string{"--topic", topic})
		require.Error(t, err, "topic %q should be rejected", topic)
		assert.Contains(t, err.Error(), "topic must be")
	}
}

func TestLoadBotsFloodTooShort(t *testing.T) {
	_, err := LoadBots("chat-bots", []string{"--flood-messages", "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flood-messages")
}

func TestLoadBotsHelp(t *testing.T) {
	_, err := LoadBots("chat-bots", []string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
