// Package session implements the per-connection chat protocol: greet the
// client, drop it into the main room, then run a select loop over inbound
// lines and room events until the client quits or the transport dies.
//
// A Session is a single goroutine; it owns its framed reader and writer
// exclusively and is never raced by its own handlers. Everything shared
// with other sessions goes through the names registry, the rooms directory
// and the room broadcast channels, which synchronize internally.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatwire/chatwire/internal/v1/broadcast"
	"github.com/chatwire/chatwire/internal/v1/logging"
	"github.com/chatwire/chatwire/internal/v1/metrics"
	"github.com/chatwire/chatwire/internal/v1/names"
	"github.com/chatwire/chatwire/internal/v1/rooms"
	"github.com/chatwire/chatwire/internal/v1/wire"
)

// helpBanner is written on connect and in reply to /help.
const helpBanner = `Commands:
  /help           show this message
  /name <name>    change your name
  /join <room>    move to another room
  /rooms          list rooms
  /users          list users in your room
  /quit           leave the server`

// errQuit ends the select loop for a client that asked to leave.
var errQuit = errors.New("session: client quit")

// readResult carries one framed read from the pump to the select loop.
type readResult struct {
	line string
	err  error
}

// Session is one connected client.
type Session struct {
	id     string // correlation id for logs
	conn   net.Conn
	reader *wire.Reader
	writer *wire.Writer

	handle string
	room   string
	ch     *broadcast.Channel[rooms.Event]
	rx     *broadcast.Receiver[rooms.Event]

	directory *rooms.Directory
	registry  *names.Registry

	done chan struct{} // closed when Run returns; stops the read pump
}

// New wraps an accepted connection. The handle must already be reserved in
// the registry; the session owns it from here on and releases it on exit.
func New(conn net.Conn, handle string, directory *rooms.Directory, registry *names.Registry) *Session {
	return &Session{
		id:        uuid.NewString(),
		conn:      conn,
		reader:    wire.NewReader(conn),
		writer:    wire.NewWriter(conn),
		handle:    handle,
		directory: directory,
		registry:  registry,
		done:      make(chan struct{}),
	}
}

// Run drives the session to completion and blocks until it ends. Whatever
// the exit path, the handle is released, room membership is removed and the
// room subscription is closed before Run returns. Canceling ctx closes the
// connection, which ends the session through its normal teardown.
func (s *Session) Run(ctx context.Context) {
	ctx = logging.WithSessionID(ctx, s.id)
	remote := s.conn.RemoteAddr().String()

	metrics.IncSession()
	defer metrics.DecSession()

	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()
	defer func() {
		close(s.done)
		_ = s.conn.Close()
	}()

	if err := s.greet(); err != nil {
		s.registry.Release(s.handle)
		if !isIgnorable(err) {
			logging.Error(ctx, "greeting failed", zap.String("remote", remote), zap.Error(err))
		}
		return
	}

	s.ch, s.rx = s.directory.Join(rooms.Main, s.handle)
	s.room = rooms.Main
	s.publish(rooms.Joined(s.handle))
	logging.Info(s.logCtx(ctx), "session started", zap.String("remote", remote))

	lines := make(chan readResult)
	go s.readPump(lines)

	err := s.loop(ctx, lines)

	s.publish(rooms.Left(s.handle))
	s.directory.Leave(s.room, s.handle)
	s.rx.Close()
	s.registry.Release(s.handle)

	if err == nil || errors.Is(err, errQuit) || isIgnorable(err) {
		logging.Info(s.logCtx(ctx), "session ended", zap.String("remote", remote))
		return
	}
	logging.Error(s.logCtx(ctx), "session failed", zap.String("remote", remote), zap.Error(err))
}

// greet sends the help banner and the assigned handle.
func (s *Session) greet() error {
	if err := s.writer.WriteLines(helpBanner); err != nil {
		return err
	}
	return s.writer.WriteLine("You are " + s.handle)
}

// loop is the session's only scheduler: each iteration handles exactly one
// inbound line or one room event, so a session can never race itself.
func (s *Session) loop(ctx context.Context, lines <-chan readResult) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case rr, ok := <-lines:
			if !ok {
				return nil
			}
			if err := s.handleLine(ctx, rr); err != nil {
				return err
			}
		case <-s.rx.Wait():
			if err := s.handleEvent(ctx); err != nil {
				return err
			}
		}
	}
}

// readPump feeds framed reads to the select loop. Oversize lines are
// survivable, so the pump keeps going after them; any other error ends the
// stream and the pump with it.
func (s *Session) readPump(lines chan<- readResult) {
	defer close(lines)
	for {
		line, err := s.reader.ReadLine()
		select {
		case lines <- readResult{line: line, err: err}:
		case <-s.done:
			return
		}
		if err != nil && !errors.Is(err, wire.ErrTooLong) {
			return
		}
	}
}

// handleLine reacts to one read: a survivable framing error gets the
// oversize reply, a chat line is published to the room, and a slash command
// is dispatched.
func (s *Session) handleLine(ctx context.Context, rr readResult) error {
	if rr.err != nil {
		if errors.Is(rr.err, wire.ErrTooLong) {
			return s.writer.WriteLine(fmt.Sprintf("Messages can only be %d chars long", wire.MaxInbound))
		}
		return rr.err
	}

	metrics.LineBytes.Observe(float64(len(rr.line)))
	if !strings.HasPrefix(rr.line, "/") {
		s.publish(rooms.Msg(s.handle + ": " + rr.line))
		return nil
	}
	return s.dispatch(ctx, rr.line)
}

// handleEvent delivers the next room event to the client. Presence events
// are personalized: the subscriber that caused one sees "You joined/left",
// everyone else sees the handle.
func (s *Session) handleEvent(ctx context.Context) error {
	ev, err := s.rx.TryRecv()
	if err != nil {
		var lag *broadcast.LagError
		switch {
		case errors.Is(err, broadcast.ErrEmpty):
			// Spurious wakeup; another receiver consumed the signal's cause.
			return nil
		case errors.As(err, &lag):
			metrics.DroppedEvents.Add(float64(lag.Count))
			logging.Warn(s.logCtx(ctx), "dropped events for slow session",
				zap.Uint64("dropped", lag.Count),
				zap.Int("subscribers", s.ch.ReceiverCount()))
			return s.writer.WriteLine(fmt.Sprintf("Server is very busy and dropped %d messages, sorry!", lag.Count))
		case errors.Is(err, broadcast.ErrClosed):
			// A room channel only closes while we hold it on shutdown paths
			// outside this loop, so landing here means the subscription went
			// bad underneath us. Rehome to main and carry on.
			return s.rehome(ctx)
		default:
			return err
		}
	}

	switch ev.Kind {
	case rooms.KindJoined:
		if ev.Handle == s.handle {
			return s.writer.WriteLine("You joined " + s.room)
		}
		return s.writer.WriteLine(ev.Handle + " joined")
	case rooms.KindLeft:
		if ev.Handle == s.handle {
			return s.writer.WriteLine("You left " + s.room)
		}
		return s.writer.WriteLine(ev.Handle + " left")
	default:
		return s.writer.WriteLine(ev.Text)
	}
}

// rehome moves the session back to main after its subscription broke.
func (s *Session) rehome(ctx context.Context) error {
	prev := s.room
	prevRx := s.rx
	s.publish(rooms.Left(s.handle))
	s.ch, s.rx = s.directory.Change(prev, rooms.Main, s.handle)
	prevRx.Close()
	s.room = rooms.Main
	s.publish(rooms.Joined(s.handle))
	logging.Warn(s.logCtx(ctx), "subscription closed underneath session, rejoined main",
		zap.String("prev_room", prev))
	return nil
}

// publish sends ev to the session's current room.
func (s *Session) publish(ev rooms.Event) {
	s.ch.Send(ev)
	metrics.RoomEvents.WithLabelValues(ev.Kind.String()).Inc()
}

// logCtx stamps the session's current handle and room onto ctx for logging.
func (s *Session) logCtx(ctx context.Context) context.Context {
	return logging.WithRoom(logging.WithHandle(ctx, s.handle), s.room)
}

// isIgnorable reports whether err is a peer-induced way for a session to
// end: the peer vanished, our own shutdown closed the socket, or the peer
// sent bytes that are not a chat line. None of these are worth an
// error-level log.
func isIgnorable(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, wire.ErrInvalidUTF8)
}
