package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dka-services/account-core/internal/common"
	"github.com/dka-services/account-core/internal/server/services"
)

type ctxKey string

const claimsKey ctxKey = "sessionClaims"

// ClaimsFromContext returns the session claims the access-token interceptor
// attached to the request context.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	return claims, ok
}

// accessTokenInterceptor guards every non-health method: it reads the
// access_token metadata entry, verifies it through the session service, and
// attaches the decrypted claims to the context. Verification failures map
// onto the status-code table.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/") {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get("access_token")
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.sessions.Verify(ctx, accessToken)
	if err != nil {
		return nil, common.GRPCStatus(err).Err()
	}

	ctx = context.WithValue(ctx, claimsKey, claims)

	return handler(ctx, req)
}
