package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"

	"github.com/andrewpark3412/gift-tracking/internal/lock"
	"github.com/andrewpark3412/gift-tracking/internal/profile"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server exposes giftd's health service on the profile's Unix socket.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger

	wg sync.WaitGroup
}

// NewServer binds the health socket. It needs the profile lock so that the
// leftover socket it unlinks can only belong to a dead daemon.
func NewServer(p Params, _ *lock.Lock, logger *zap.Logger, hs *health.Server) (*Server, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = profile.SocketPath(p.Profile)
	}

	listener, err := listenSocket(socketPath)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &Server{grpcServer: srv, listener: listener, socketPath: socketPath, logger: logger}, nil
}

// listenSocket replaces any leftover socket file and restricts the new one
// to the owner.
func listenSocket(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove leftover socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("restrict socket: %w", err)
	}
	return listener, nil
}

// Serve answers health checks in the background until Stop.
func (s *Server) Serve() {
	s.logger.Info("health socket listening", zap.String("socket", s.socketPath))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.logger.Error("health socket failed", zap.Error(err))
		}
	}()
}

// Stop drains open health streams until ctx ends, then closes them and
// removes the socket file.
func (s *Server) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("health socket did not drain in time, closing", zap.Error(ctx.Err()))
		s.grpcServer.Stop()
		<-done
	}
	s.wg.Wait()
	_ = os.Remove(s.socketPath)
}
