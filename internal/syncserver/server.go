package syncserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

type Status struct {
	Running   bool       `json:"running"`
	Address   string     `json:"address"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// Server is the LAN listener for mobile clients. It can be started and
// stopped at runtime while the main API keeps serving.
type Server struct {
	log     *slog.Logger
	addr    string
	handler http.Handler

	mu        sync.Mutex
	srv       *http.Server
	bound     string
	startedAt time.Time
	done      chan struct{}
}

func New(log *slog.Logger, addr string, handler http.Handler) *Server {
	return &Server{log: log, addr: addr, handler: handler}
}

// Start binds the address and serves in the background. Starting a running
// server does nothing.
func (s *Server) Start() error {
	const op = "syncserver.Start"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	done := make(chan struct{})

	s.srv = srv
	s.bound = ln.Addr().String()
	s.startedAt = time.Now()
	s.done = done

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("sync server stopped", slog.String("op", op), slog.String("error", err.Error()))
			s.mu.Lock()
			if s.srv == srv {
				s.srv = nil
			}
			s.mu.Unlock()
		}
	}()

	s.log.Info("sync server started", slog.String("address", s.bound))

	return nil
}

// Stop shuts the listener down gracefully. Stopping a stopped server does
// nothing.
func (s *Server) Stop(ctx context.Context) error {
	const op = "syncserver.Stop"

	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	<-done

	s.log.Info("sync server stopped")

	return nil
}

func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srv != nil
}

func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv == nil {
		return Status{Address: s.addr}
	}
	started := s.startedAt
	return Status{Running: true, Address: s.bound, StartedAt: &started}
}
