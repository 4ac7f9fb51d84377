package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the chat server.
//
// Naming convention: namespace_subsystem_name
// - namespace: chat (application-level grouping)
// - subsystem: session, room, wire (feature-level grouping)
// - name: specific metric (sessions_active, events_total, etc.)
//
// Metric Types:
// - Gauge: Current state (sessions, rooms, users per room)
// - Counter: Cumulative events (room events published, commands, drops)
// - Histogram: Distributions (inbound line sizes)

var (
	// ActiveSessions tracks the current number of connected sessions (Gauge - current state)
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat",
		Subsystem: "session",
		Name:      "sessions_active",
		Help:      "Current number of connected sessions",
	})

	// ActiveRooms tracks the current number of live rooms (Gauge - current state)
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of live rooms",
	})

	// RoomUsers tracks the number of users in each room (GaugeVec with room label - current state per room)
	RoomUsers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "chat",
		Subsystem: "room",
		Name:      "users_count",
		Help:      "Number of users in each room",
	}, []string{"room"})

	// RoomEvents counts events published to room channels (CounterVec - cumulative)
	RoomEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat",
		Subsystem: "room",
		Name:      "events_total",
		Help:      "Total events published to room channels",
	}, []string{"kind"})

	// DroppedEvents counts events skipped by lagging receivers (Counter - cumulative)
	DroppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Subsystem: "room",
		Name:      "events_dropped_total",
		Help:      "Total events dropped because a receiver lagged",
	})

	// Commands counts slash commands dispatched by sessions (CounterVec - cumulative)
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat",
		Subsystem: "session",
		Name:      "commands_total",
		Help:      "Total slash commands processed",
	}, []string{"command", "status"})

	// LineBytes tracks the size of inbound chat lines (Histogram - distribution)
	LineBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chat",
		Subsystem: "wire",
		Name:      "line_bytes",
		Help:      "Size in bytes of inbound lines",
		Buckets:   []float64{8, 16, 32, 64, 128, 256, 400},
	})
)

func IncSession() {
	ActiveSessions.Inc()
}

func DecSession() {
	ActiveSessions.Dec()
}
