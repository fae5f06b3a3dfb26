package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Listen binds a TCP listener on host:port. Port 0 asks the operating system
// for a free port; the chosen one is available from the listener's Addr.
func Listen(host string, port uint16) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return ln, nil
}

// Server serves the API on a bound listener.
type Server struct {
	listener net.Listener
	http     *http.Server
	logger   *slog.Logger

	started  atomic.Bool
	done     chan struct{}
	serveErr error
}

// New creates a server on listener whose handlers share db. Neither is
// owned by the server beyond the listener being closed on shutdown.
func New(listener net.Listener, db *sql.DB, logger *slog.Logger) (*Server, error) {
	if listener == nil {
		return nil, fmt.Errorf("%w: listener", ErrNilDependency)
	}
	if db == nil {
		return nil, fmt.Errorf("%w: database", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		listener: listener,
		http: &http.Server{
			Handler:           NewRouter(db, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With(slog.String("component", "http_server")),
		done:   make(chan struct{}),
	}, nil
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Port returns the bound TCP port.
func (s *Server) Port() int {
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// URL returns the base URL clients should use, e.g. http://127.0.0.1:41234.
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Serve accepts connections until the server is shut down. A clean shutdown
// returns nil. Only the first call serves; later calls wait for it.
func (s *Server) Serve() error {
	if s.started.CompareAndSwap(false, true) {
		s.logger.Info("starting server", slog.String("address", s.listener.Addr().String()))
		err := s.http.Serve(s.listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.serveErr = err
		close(s.done)
	}
	<-s.done
	return s.serveErr
}

// Start runs Serve in a background goroutine. Use Wait to collect its result.
func (s *Server) Start() {
	go func() {
		if err := s.Serve(); err != nil {
			s.logger.Error("server failed", slog.String("error", err.Error()))
		}
	}()
}

// Wait blocks until serving stops and returns the serve error, if any.
// It returns immediately once Shutdown has been called on a server that
// never started.
func (s *Server) Wait() error {
	<-s.done
	return s.serveErr
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done. A server that never started releases its listener and
// will not serve afterwards.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.started.CompareAndSwap(false, true) {
		_ = s.listener.Close()
		close(s.done)
	}
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server shutdown completed")
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// ShutdownTimeout. It returns the first serve or shutdown error.
func (s *Server) Run(ctx context.Context) error {
	s.Start()

	select {
	case <-ctx.Done():
		s.logger.Info("server context canceled, shutting down")
	case <-s.done:
		return s.serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.Wait()
}
