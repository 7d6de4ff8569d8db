package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	ginhandler "user-record-service/internal/adapter/gin/handler"
	"user-record-service/internal/adapter/gin/middleware"
	"user-record-service/internal/config"
	"user-record-service/internal/usecase/user"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	// GRPC is nil unless GRPC_HEALTH_ENABLED is set.
	GRPC *grpc.Server
}

// New creates a new server instance
func New(
	cfg *config.Config,
	l *zap.Logger,
	userUC user.Usecase,
	rateLimiter *middleware.RateLimiter,
	handler *ginhandler.UserHandler,
) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		Gin:    SetupGinServer(handler, rateLimiter, ":"+cfg.App.HTTPPort, l),
	}
	if cfg.App.GRPCHealthEnabled {
		s.GRPC = SetupGRPC(userUC, rateLimiter, l)
	}
	return s
}

// StartGin serves the REST API until the server is shut down.
func (s *Server) StartGin() error {
	s.Logger.Info("Gin REST API running", zap.String("address", s.Gin.Addr))
	if err := s.Gin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gin server: %w", err)
	}
	return nil
}

// StartGRPC serves the gRPC health endpoint until the server is stopped.
// It returns immediately when gRPC is disabled.
func (s *Server) StartGRPC() error {
	if s.GRPC == nil {
		return nil
	}

	lc := net.ListenConfig{}
	lis, err := lc.Listen(context.Background(), "tcp", s.grpcAddress())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("gRPC server running", zap.String("address", s.grpcAddress()))
	if err := s.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc server: %w", err)
	}
	return nil
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}
