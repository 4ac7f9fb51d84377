package session

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chatwire/chatwire/internal/v1/logging"
	"github.com/chatwire/chatwire/internal/v1/metrics"
	"github.com/chatwire/chatwire/internal/v1/names"
	"github.com/chatwire/chatwire/internal/v1/rooms"
)

// dispatch routes one slash command. Tokens split on ASCII whitespace; the
// first token names the command and the second, when present, is its
// argument. Anything unrecognized gets a pointer to /help.
func (s *Session) dispatch(ctx context.Context, line string) error {
	tokens := strings.FieldsFunc(line, isASCIISpace)
	arg := ""
	if len(tokens) > 1 {
		arg = tokens[1]
	}

	switch tokens[0] {
	case "/help":
		metrics.Commands.WithLabelValues("help", "ok").Inc()
		return s.writer.WriteLines(helpBanner)
	case "/name":
		return s.cmdName(ctx, arg)
	case "/join":
		return s.cmdJoin(ctx, arg)
	case "/rooms":
		metrics.Commands.WithLabelValues("rooms", "ok").Inc()
		return s.cmdRooms()
	case "/users":
		metrics.Commands.WithLabelValues("users", "ok").Inc()
		return s.cmdUsers()
	case "/quit":
		metrics.Commands.WithLabelValues("quit", "ok").Inc()
		return errQuit
	default:
		metrics.Commands.WithLabelValues("unknown", "rejected").Inc()
		return s.writer.WriteLine("Unrecognized command " + tokens[0] + ", try /help")
	}
}

// cmdName renames the session. The new handle is reserved before the old
// one is released, so no other session can grab either during the switch;
// the rename event is published before the old handle frees up again.
func (s *Session) cmdName(ctx context.Context, newName string) error {
	if !names.Valid(newName) {
		metrics.Commands.WithLabelValues("name", "invalid").Inc()
		return s.writer.WriteLine("Name must be 2 - 20 alphanumeric chars")
	}
	if !s.registry.TryInsert(newName) {
		metrics.Commands.WithLabelValues("name", "taken").Inc()
		return s.writer.WriteLine(newName + " is already taken")
	}

	old := s.handle
	s.directory.ChangeName(s.room, old, newName)
	s.publish(rooms.Msg(old + " is now " + newName))
	s.handle = newName
	s.registry.Release(old)

	metrics.Commands.WithLabelValues("name", "ok").Inc()
	logging.Info(s.logCtx(ctx), "handle changed", zap.String("old_handle", old))
	return nil
}

// cmdJoin moves the session to another room. The old receiver stays
// subscribed until the directory has processed the move, which keeps the
// destroy-when-last-out check from tearing down a room that still has
// someone in it.
func (s *Session) cmdJoin(ctx context.Context, next string) error {
	if !names.Valid(next) {
		metrics.Commands.WithLabelValues("join", "invalid").Inc()
		return s.writer.WriteLine("Room must be 2 - 20 alphanumeric chars")
	}
	if next == s.room {
		metrics.Commands.WithLabelValues("join", "noop").Inc()
		return s.writer.WriteLine("You are in " + s.room)
	}

	prev := s.room
	prevRx := s.rx
	s.publish(rooms.Left(s.handle))
	s.ch, s.rx = s.directory.Change(prev, next, s.handle)
	prevRx.Close()
	s.room = next
	s.publish(rooms.Joined(s.handle))

	metrics.Commands.WithLabelValues("join", "ok").Inc()
	logging.Info(s.logCtx(ctx), "room changed", zap.String("prev_room", prev))

	// The old receiver was dropped before it could deliver our own Left
	// event, so tell the mover directly. The new room's Joined event is
	// still queued, so the client reads these in order.
	return s.writer.WriteLine("You left " + prev)
}

// cmdRooms lists every live room with its subscriber count, busiest first.
func (s *Session) cmdRooms() error {
	list := s.directory.List()
	parts := make([]string, len(list))
	for i, info := range list {
		parts[i] = info.Name + " (" + strconv.Itoa(info.Subscribers) + ")"
	}
	return s.writer.WriteLine("Rooms - " + strings.Join(parts, ", "))
}

// cmdUsers lists the handles in the session's current room.
func (s *Session) cmdUsers() error {
	users, ok := s.directory.ListUsers(s.room)
	if !ok {
		// The session subscribes to its current room, so the room must
		// exist; answer with what we know if the directory says otherwise.
		users = []string{s.handle}
	}
	return s.writer.WriteLine("Users - " + strings.Join(users, ", "))
}

// isASCIISpace matches the whitespace that separates command tokens.
func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
