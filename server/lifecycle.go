package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

// ShutdownTimeout bounds how long Stop waits for goroutines
const ShutdownTimeout = 5 * time.Second

// ListenAndServe starts the hub and serves on addr until Stop is called
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ln)
}

// Serve starts the hub and serves on ln until Stop is called
func (s *Server) Serve(ln net.Listener) error {
	s.Start()

	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.log.Infow("Server ready", logger.FieldAddress, ln.Addr().String(), logger.FieldBackend, s.opts.Backend)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}

// Stop shuts the server down: HTTP first, then views, then the hub
func (s *Server) Stop() error {
	s.log.Infow("Initiating server shutdown")

	for _, release := range s.releases {
		release()
	}

	s.mu.Lock()
	srv := s.httpServer
	clientsToClose := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clientsToClose = append(clientsToClose, client)
	}
	s.mu.Unlock()

	var shutdownErr error
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		shutdownErr = srv.Shutdown(ctx)
		cancel()
	}

	// Hijacked connections are not tracked by http.Server
	for _, client := range clientsToClose {
		client.conn.Close()
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Infow("All goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		s.log.Warnw("Goroutine shutdown timed out", "timeout", ShutdownTimeout)
	}

	s.log.Infow("Server shutdown complete", "broadcast_drops", s.drops.Load())
	if shutdownErr != nil {
		return errors.Wrap(shutdownErr, "http shutdown")
	}
	return nil
}
