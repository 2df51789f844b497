// Package health exposes the standard gRPC health service for orchestrators.
package health

import (
	"context"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"roomchat/internal/observability"
)

type Server struct {
	grpc    *grpc.Server
	status  *grpchealth.Server
	service string
}

// New builds a health server reporting SERVING for service and for the empty service name.
func New(service string) *Server {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	status := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, status)
	status.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	status.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
	return &Server{grpc: srv, status: status, service: service}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Shutdown flips every service to NOT_SERVING and stops the server, forcing it when ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.status.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		return ctx.Err()
	}
}
