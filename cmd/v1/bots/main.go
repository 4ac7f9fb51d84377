package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/chatwire/chatwire/internal/v1/bot"
	"github.com/chatwire/chatwire/internal/v1/config"
	"github.com/chatwire/chatwire/internal/v1/logging"
)

// Casual and topical bots send this many lines each, /quit included. Flood
// volume comes from configuration.
const chatterLines = 100

// Pacing bands in milliseconds: chatty bots type like people, flood bots
// hammer.
const (
	chatterDelayMin = 2000
	chatterDelayMax = 4000
	floodDelayMin   = 100
	floodDelayMax   = 200
)

func main() {
	// Load .env file for local development.
	// Try multiple paths to handle different ways of running the app
	envPaths := []string{".env", "../../../.env", "../../.env"}
	var envLoaded bool

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			slog.Info("Loaded environment from", "path", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		slog.Info("No .env file found, relying on environment variables")
	}

	cfg, err := config.LoadBots("chat-bots", os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	if err := logging.Initialize(cfg.LogLevel, cfg.Dev); err != nil {
		slog.Error("Logger initialization failed", "error", err)
		os.Exit(1)
	}
	logger := logging.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Probe once before unleashing the swarm so a missing server is one
	// clear error instead of hundreds of dial failures.
	conn, err := net.DialTimeout("tcp", cfg.Addr, 3*time.Second)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			logging.Error(ctx, "no server listening", zap.String("addr", cfg.Addr),
				zap.String("hint", "start one with: chat-server --ip <host> --port <port>"))
		} else {
			logging.Error(ctx, "probe failed", zap.String("addr", cfg.Addr), zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
	conn.Close()

	root := rand.New(rand.NewSource(time.Now().UnixNano()))
	stats := &bot.Stats{}
	var wg sync.WaitGroup

	spawn := func(b *bot.Bot) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error(ctx, "bot failed", zap.Error(err))
			}
		}()
	}

	logging.Info(ctx, "spawning bots",
		zap.Int("casual", cfg.Casual),
		zap.Int("topical", cfg.Topical),
		zap.Int("flood", cfg.Flood),
		zap.String("addr", cfg.Addr))

	for i := 0; i < cfg.Casual; i++ {
		rng := rand.New(rand.NewSource(root.Int63()))
		spawn(bot.New(cfg.Addr, bot.Casual(chatterLines, rng), pace(root, chatterDelayMin, chatterDelayMax), stats))
	}
	for i := 0; i < cfg.Topical; i++ {
		rng := rand.New(rand.NewSource(root.Int63()))
		spawn(bot.New(cfg.Addr, bot.Topical(cfg.Topic, chatterLines, rng), pace(root, chatterDelayMin, chatterDelayMax), stats))
	}
	for i := 0; i < cfg.Flood; i++ {
		rng := rand.New(rand.NewSource(root.Int63()))
		spawn(bot.New(cfg.Addr, bot.Flood(cfg.FloodMessages, rng), pace(root, floodDelayMin, floodDelayMax), stats))
	}

	if cfg.ReportEnabled() {
		proc, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			logging.Warn(ctx, "resource reporter unavailable", zap.Error(err))
		} else {
			go report(ctx, proc, cfg.Report, stats)
		}
	}

	logging.Info(ctx, "waiting for bots to finish")
	wg.Wait()

	logging.Info(context.Background(), "swarm finished",
		zap.Int64("sent_bytes", stats.SentBytes.Load()),
		zap.Int64("got_bytes", stats.GotBytes.Load()),
		zap.Int64("sent_msgs", stats.SentMsgs.Load()),
		zap.Int64("got_msgs", stats.GotMsgs.Load()))
}

// pace draws a per-bot send interval from [min, max] milliseconds.
func pace(root *rand.Rand, min, max int) time.Duration {
	return time.Duration(min+root.Intn(max-min+1)) * time.Millisecond
}

// report logs process CPU and memory alongside running traffic totals until
// ctx is cancelled.
func report(ctx context.Context, proc *process.Process, interval time.Duration, stats *bot.Stats) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cpu, err := proc.CPUPercent()
			if err != nil {
				continue
			}
			var rss uint64
			if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
				rss = mem.RSS
			}
			logging.Info(ctx, "load generator resources",
				zap.Float64("cpu_percent", cpu),
				zap.Uint64("rss_bytes", rss),
				zap.Int64("sent_msgs", stats.SentMsgs.Load()),
				zap.Int64("got_msgs", stats.GotMsgs.Load()))
		}
	}
}
