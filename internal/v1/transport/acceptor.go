// Package transport owns the TCP listening socket. It binds the configured
// address, reserves a unique handle for every accepted connection, and hands
// each one to its own session goroutine.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chatwire/chatwire/internal/v1/logging"
	"github.com/chatwire/chatwire/internal/v1/names"
	"github.com/chatwire/chatwire/internal/v1/rooms"
	"github.com/chatwire/chatwire/internal/v1/session"
)

// HandleGenerator produces candidate handles for new connections. It is only
// ever called from the accept loop, so implementations need not be safe for
// concurrent use.
type HandleGenerator interface {
	Next() string
}

// Server accepts chat connections and spawns a session per client.
type Server struct {
	directory *rooms.Directory
	registry  *names.Registry
	generator HandleGenerator

	lis   net.Listener
	ready atomic.Bool
	wg    sync.WaitGroup
}

// NewServer wires the acceptor to the process-wide registries.
func NewServer(directory *rooms.Directory, registry *names.Registry, generator HandleGenerator) *Server {
	return &Server{
		directory: directory,
		registry:  registry,
		generator: generator,
	}
}

// Listen binds addr. After a successful bind the server reports ready.
func (s *Server) Listen(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.lis = lis
	s.ready.Store(true)
	return nil
}

// Addr returns the bound listen address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}

// Ready reports whether the listener is bound and accepting. It backs the
// ops readiness probe.
func (s *Server) Ready() bool {
	return s.ready.Load()
}

// Serve accepts connections until ctx is canceled or the listener fails.
// Each connection gets a unique handle before its session goroutine starts,
// so two clients can never greet as the same name. On cancellation Serve
// closes the listener, waits for open sessions to finish their teardown and
// returns nil; any other accept error is fatal and returned.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.ready.Store(false)
		_ = s.lis.Close()
	})
	defer stop()

	for {
		conn, err := s.lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				logging.Info(ctx, "acceptor stopping, draining sessions")
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		handle := s.registry.ReserveUnique(s.generator.Next)
		logging.Info(ctx, "connection accepted",
			zap.String("remote", conn.RemoteAddr().String()),
			zap.String("handle", handle))

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			session.New(conn, handle, s.directory, s.registry).Run(ctx)
		}()
	}
}
