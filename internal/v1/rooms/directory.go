// Package rooms owns the process-wide rooms directory: the mapping from room
// name to the room's broadcast channel and current user set. Rooms are
// created when the first user joins and destroyed when the last one leaves.
package rooms

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"k8s.io/utils/set"

	"github.com/chatwire/chatwire/internal/v1/broadcast"
	"github.com/chatwire/chatwire/internal/v1/logging"
	"github.com/chatwire/chatwire/internal/v1/metrics"
)

const (
	// Main is the room every session starts in.
	Main = "main"

	// ChannelCapacity bounds each room's broadcast channel. A receiver that
	// falls further behind than this observes a lag and skips forward.
	ChannelCapacity = 1024
)

// Room pairs a broadcast channel with the set of handles currently present.
// Both are owned by the Directory and touched only under its lock; the
// channel itself is safe for concurrent sends and receives.
type Room struct {
	ch    *broadcast.Channel[Event]
	users set.Set[string]
}

func newRoom() *Room {
	return &Room{
		ch:    broadcast.New[Event](ChannelCapacity),
		users: set.New[string](),
	}
}

// Info is one row of a directory listing.
type Info struct {
	Name        string
	Subscribers int
}

// Directory is the process-wide room registry. All methods are safe for
// concurrent use.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string]*Room, 8)}
}

// Join adds user to roomName, creating the room if it does not exist, and
// returns the room's channel together with a receiver subscribed to it.
// The subscription is taken before the directory lock is released, so the
// room's subscriber count already includes this user when Join returns;
// a concurrent Leave can therefore never destroy a room someone has joined.
func (d *Directory) Join(roomName, user string) (*broadcast.Channel[Event], *broadcast.Receiver[Event]) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomName]
	if !ok {
		room = newRoom()
		d.rooms[roomName] = room
		metrics.ActiveRooms.Inc()
		logging.Info(context.Background(), "room created", zap.String("room", roomName))
	}
	room.users.Insert(user)
	metrics.RoomUsers.WithLabelValues(roomName).Set(float64(room.users.Len()))
	return room.ch, room.ch.Subscribe()
}

// Leave removes user from roomName. The room is destroyed when at most one
// subscriber remains: that last receiver belongs to the leaving session
// itself and is dropped right after this call, while any concurrent joiner
// has already registered its own receiver inside Join's critical section.
// Leaving a room that no longer exists is a no-op.
func (d *Directory) Leave(roomName, user string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomName]
	if !ok {
		return
	}
	room.users.Delete(user)
	if room.ch.ReceiverCount() <= 1 {
		delete(d.rooms, roomName)
		metrics.ActiveRooms.Dec()
		metrics.RoomUsers.DeleteLabelValues(roomName)
		logging.Info(context.Background(), "room destroyed", zap.String("room", roomName))
		return
	}
	metrics.RoomUsers.WithLabelValues(roomName).Set(float64(room.users.Len()))
}

// Change moves user from prev to next and returns the new room's channel and
// receiver. The two steps are not atomic: a moment with membership in
// neither room is observable.
func (d *Directory) Change(prev, next, user string) (*broadcast.Channel[Event], *broadcast.Receiver[Event]) {
	d.Leave(prev, user)
	return d.Join(next, user)
}

// ChangeName replaces prev with next in roomName's user set, keeping the
// subscription untouched. No-op if the room is gone.
func (d *Directory) ChangeName(roomName, prev, next string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomName]
	if !ok {
		return
	}
	room.users.Delete(prev)
	room.users.Insert(next)
}

// List returns a snapshot of all rooms ordered by subscriber count
// descending, ties broken by name ascending.
func (d *Directory) List() []Info {
	d.mu.RLock()
	list := make([]Info, 0, len(d.rooms))
	for name, room := range d.rooms {
		list = append(list, Info{Name: name, Subscribers: room.ch.ReceiverCount()})
	}
	d.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Subscribers != list[j].Subscribers {
			return list[i].Subscribers > list[j].Subscribers
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// ListUsers returns roomName's users sorted ascending, or false if the room
// is gone.
func (d *Directory) ListUsers(roomName string) ([]string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.rooms[roomName]
	if !ok {
		return nil, false
	}
	return room.users.SortedList(), true
}

// Len reports the number of live rooms.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
