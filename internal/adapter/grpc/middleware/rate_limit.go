package middleware

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// Limiter decides whether one more request under key is admitted.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimitInterceptor rejects unary calls the limiter refuses with
// ResourceExhausted. A nil limiter admits everything.
func RateLimitInterceptor(l Limiter, log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if l == nil {
			return handler(ctx, req)
		}

		clientIP := getClientIP(ctx)
		key := fmt.Sprintf("ratelimit:%s:%s", info.FullMethod, clientIP)

		if !l.Allow(ctx, key) {
			log.Warn("grpc rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
			)
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}

		return handler(ctx, req)
	}
}

// getClientIP extracts the client IP address from the gRPC context.
func getClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	// Drop the ephemeral port so reconnecting does not open a new window.
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr := p.Addr.String()
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}

	return "unknown"
}
