// Package grpc hosts the transport seam: the listener, the access-token
// interceptor, and the health service.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dka-services/account-core/internal/logging"
	"github.com/dka-services/account-core/internal/server/services"
)

// SessionVerifier is the slice of the session service the interceptor
// needs.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*services.Claims, error)
}

type GRPCServer struct {
	address  string
	sessions SessionVerifier
	logger   logging.Logger
	health   *health.Server
}

func NewGRPCServer(a string, l logging.Logger, ss SessionVerifier) (*GRPCServer, error) {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: ss,
		health:   health.NewServer(),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
