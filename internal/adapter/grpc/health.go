package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"user-record-service/pkg/logger"
)

// ServiceName is the service name accepted by Check besides the empty
// overall-server name.
const ServiceName = "users"

// Pinger probes the backing database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer implements grpc.health.v1.Health on top of the database probe
// used by GET /.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	pinger Pinger
	log    *zap.Logger
}

// NewHealthServer creates a new gRPC health server
func NewHealthServer(p Pinger, log *zap.Logger) *HealthServer {
	return &HealthServer{pinger: p, log: log}
}

// Check reports SERVING when the database answers a ping.
func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	if err := s.pinger.Ping(ctx); err != nil {
		logger.WithContext(ctx, s.log).Warn("health check failed", zap.Error(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
