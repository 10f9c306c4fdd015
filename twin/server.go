package twin

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server is a running twin listening on a local port.
type Server struct {
	URL    string
	server *http.Server
	logger *zap.Logger
}

// Start listens on addr (use "127.0.0.1:0" for any free port) and serves handler in the
// background. The listener is bound before Start returns, so the server accepts requests
// immediately.
func Start(addr string, handler http.Handler, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("twin listen on %s: %w", addr, err)
	}
	s := &Server{
		URL: "http://" + listener.Addr().String(),
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("twin server stopped", zap.Error(err))
		}
	}()
	logger.Info("twin listening", zap.String("url", s.URL))
	return s, nil
}

// Close shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down twin", zap.String("url", s.URL))
	return s.server.Shutdown(ctx)
}
