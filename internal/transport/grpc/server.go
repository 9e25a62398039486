// Package grpc provides the gRPC transport layer for the catalog service.
//
// Category RPCs exchange google.protobuf.Struct messages so that clients can
// call them without generated stubs. The standard health service and server
// reflection are registered alongside.
package grpc

import (
	"context"
	"log/slog"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/mvaleed/catalog/internal/auth"
	"github.com/mvaleed/catalog/internal/service"
)

// Server wraps the gRPC server with dependencies
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewServer creates a new gRPC server with all handlers registered
func NewServer(
	categoryService *service.CategoryService,
	jwtManager *auth.JWTManager,
	logger *slog.Logger,
) *Server {
	s := &Server{
		health:     health.NewServer(),
		jwtManager: jwtManager,
		logger:     logger,
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			s.loggingInterceptor,
			s.recoveryInterceptor,
			s.authInterceptor,
		),
	)

	grpcServer.RegisterService(&categoryServiceDesc, newCategoryHandler(categoryService))
	healthpb.RegisterHealthServer(grpcServer, s.health)
	reflection.Register(grpcServer)

	s.health.SetServingStatus(categoryServiceName, healthpb.HealthCheckResponse_SERVING)

	s.grpcServer = grpcServer
	return s
}

// Serve starts the gRPC server on the given listener
func (s *Server) Serve(listener net.Listener) error {
	return s.grpcServer.Serve(listener)
}

// GracefulStop marks every service NOT_SERVING and then drains connections.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// loggingInterceptor logs all incoming requests
func (s *Server) loggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	s.logger.Info("gRPC request",
		"method", info.FullMethod,
	)

	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Error("gRPC request failed",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"error", err,
		)
	}

	return resp, err
}

// recoveryInterceptor recovers from panics
func (s *Server) recoveryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("gRPC panic recovered",
				"method", info.FullMethod,
				"panic", r,
			)
			err = status.Error(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}

// authInterceptor validates JWT tokens for protected endpoints
func (s *Server) authInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	if isPublicMethod(info.FullMethod) {
		return handler(ctx, req)
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}

	tokens := md.Get("authorization")
	if len(tokens) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing authorization token")
	}

	token := strings.TrimPrefix(tokens[0], "Bearer ")

	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, claimsKey{}, claims)

	return handler(ctx, req)
}

// claimsKey is the context key for JWT claims
type claimsKey struct{}

// ClaimsFromContext extracts JWT claims from the context
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// isPublicMethod returns true if the method doesn't require authentication
func isPublicMethod(method string) bool {
	switch method {
	case "/grpc.health.v1.Health/Check",
		"/" + categoryServiceName + "/GetCategory",
		"/" + categoryServiceName + "/ListCategories":
		return true
	}
	return false
}

// requirePermission checks if the current caller has the required permission
func requirePermission(ctx context.Context, resource, action string) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "not authenticated")
	}

	if !claims.HasPermission(resource, action) {
		return status.Error(codes.PermissionDenied, "permission denied")
	}
	return nil
}
