package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"user-record-service/internal/adapter/gin/middleware"
	grpcadapter "user-record-service/internal/adapter/grpc"
	grpcmiddleware "user-record-service/internal/adapter/grpc/middleware"
	"user-record-service/internal/usecase/user"
	"user-record-service/pkg/logger"
)

// SetupGRPC creates the gRPC server exposing grpc.health.v1.Health
func SetupGRPC(userUC user.Usecase, rateLimiter *middleware.RateLimiter, l *zap.Logger) *grpc.Server {
	var limiter grpcmiddleware.Limiter
	if rateLimiter != nil {
		limiter = rateLimiter
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(l),
			grpcmiddleware.RateLimitInterceptor(limiter, l),
		),
	)
	healthpb.RegisterHealthServer(grpcServer, grpcadapter.NewHealthServer(userUC, l))

	return grpcServer
}
