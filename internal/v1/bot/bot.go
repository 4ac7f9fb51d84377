// Package bot implements the scripted clients used to load-test the chat
// server. A bot dials the server, plays a script of lines at a fixed pace,
// and drains everything the server sends while counting traffic.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/chatwire/chatwire/internal/v1/wire"
)

// Stats aggregates traffic counters across a whole swarm. Every bot shares
// one instance and bumps it atomically.
type Stats struct {
	SentMsgs  atomic.Int64
	GotMsgs   atomic.Int64
	SentBytes atomic.Int64
	GotBytes  atomic.Int64
}

// Script yields the next line a bot sends; ok reports false once the script
// is exhausted. Scripts are single-use and owned by one bot.
type Script func() (line string, ok bool)

// Casual returns a script of n lines of random chatter, the last being
// /quit.
func Casual(n int, rng *rand.Rand) Script {
	sent := 0
	return func() (string, bool) {
		if sent >= n {
			return "", false
		}
		sent++
		if sent == n {
			return "/quit", true
		}
		return Sentence(rng), true
	}
}

// Topical returns a script that joins topic first and then chats like
// Casual.
func Topical(topic string, n int, rng *rand.Rand) Script {
	sent := 0
	return func() (string, bool) {
		if sent >= n {
			return "", false
		}
		sent++
		switch sent {
		case 1:
			return "/join " + topic, true
		case n:
			return "/quit", true
		default:
			return Sentence(rng), true
		}
	}
}

// Flood returns a script that pounds the stress-test room with n lines.
func Flood(n int, rng *rand.Rand) Script {
	return Topical("stress-test", n, rng)
}

// Bot is one scripted client connection.
type Bot struct {
	addr    string
	script  Script
	limiter *rate.Limiter
	stats   *Stats
}

// New returns a bot that will dial addr and send one scripted line per
// interval, recording traffic into stats.
func New(addr string, script Script, interval time.Duration, stats *Stats) *Bot {
	return &Bot{
		addr:    addr,
		script:  script,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		stats:   stats,
	}
}

// Run plays the script against the server and returns once the server has
// hung up on the final /quit, or on the first error. Canceling ctx closes
// the connection and unblocks both directions.
func (b *Bot) Run(ctx context.Context) error {
	conn, err := net.Dial("tcp", b.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", b.addr, err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	done := make(chan struct{})
	go b.drain(conn, done)
	defer func() {
		_ = conn.Close()
		<-done
	}()

	w := wire.NewWriterSize(conn, wire.MaxInbound)
	for {
		line, ok := b.script()
		if !ok {
			break
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := w.WriteLine(line); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		b.stats.SentMsgs.Add(1)
		b.stats.SentBytes.Add(int64(len(line)) + 1)
	}

	// The script ends in /quit, so the server closes the connection and the
	// drain loop returns on EOF.
	<-done
	return nil
}

// drain counts every line the server sends until the connection ends.
func (b *Bot) drain(conn net.Conn, done chan<- struct{}) {
	defer close(done)
	r := wire.NewReaderSize(conn, wire.MaxOutbound)
	for {
		line, err := r.ReadLine()
		if err != nil {
			return
		}
		b.stats.GotMsgs.Add(1)
		b.stats.GotBytes.Add(int64(len(line)) + 1)
	}
}
