// Package grpc поднимает служебный gRPC сервер: health check и reflection.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"notekeeper/internal/config"
	"notekeeper/pkg/logger"
)

// ServiceName - имя сервиса в ответах health check.
const ServiceName = "notekeeper"

// Server представляет gRPC сервер.
type Server struct {
	server   *grpc.Server
	health   *health.Server
	address  string
	listener net.Listener
}

// New создает новый экземпляр gRPC сервера с зарегистрированными health и reflection.
func New(cfg *config.GRPCConfig) *Server {
	srv := grpc.NewServer()
	hs := health.NewServer()

	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		server:  srv,
		health:  hs,
		address: cfg.GetAddress(),
	}
}

// Start открывает listener, начинает обслуживание и переводит статус в SERVING.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error(ctx, "failed to serve gRPC", zap.Error(err))
		}
	}()

	s.SetServing(true)
	log.Info(ctx, "gRPC server started", zap.String("address", listener.Addr().String()))
	return nil
}

// SetServing переключает статус health check.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Addr возвращает фактический адрес listener, nil до Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop переводит статус в NOT_SERVING и корректно останавливает сервер.
// Если ctx истекает раньше, оставшиеся соединения закрываются принудительно.
func (s *Server) Stop(ctx context.Context) error {
	log := logger.Log(ctx)
	log.Info(ctx, "stopping gRPC server")

	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("gRPC graceful stop: %w", ctx.Err())
	}
}
