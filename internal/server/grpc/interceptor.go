package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/blockkeeper/internal/api"
	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// identityInterceptor resolves the caller identity from the authorization
// metadata and attaches it to the context. It never rejects a call: missing
// or bad tokens yield auth.Anonymous and handlers decide.
func (s *GRPCServer) identityInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	id := auth.Anonymous

	if token := bearerToken(ctx); token != "" {
		sub, err := s.tokens.Verify(token)
		if err != nil {
			s.logger.Debug(ctx, "token rejected", "method", info.FullMethod, "error", err)
		} else {
			id = auth.Authenticated(sub)
		}
	}

	return handler(auth.WithIdentity(ctx, id), req)
}

// loggingInterceptor tags the call with a request id, logs its outcome and
// records call metrics.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := firstMetadata(ctx, api.RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	// no transport stream in direct calls
	_ = grpc.SetHeader(ctx, metadata.Pairs(api.RequestIDHeader, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	code := status.Code(err)
	method := info.FullMethod[strings.LastIndex(info.FullMethod, "/")+1:]
	s.metrics.ObserveCall(method, code.String(), elapsed.Seconds())

	args := []any{"method", info.FullMethod, "request_id", requestID, "duration", elapsed, "code", code.String()}
	if err != nil && code == codes.Internal {
		s.logger.Error(ctx, "grpc call failed", args...)
	} else {
		s.logger.Info(ctx, "grpc call", args...)
	}

	return resp, err
}

// bearerToken reads "Bearer <token>" from the authorization metadata. A bare
// token is accepted too.
func bearerToken(ctx context.Context) string {
	v := strings.TrimSpace(firstMetadata(ctx, common.AccessTokenHeaderName))
	if len(v) >= len(common.BearerPrefix) && strings.EqualFold(v[:len(common.BearerPrefix)], common.BearerPrefix) {
		v = strings.TrimSpace(v[len(common.BearerPrefix):])
	}
	return v
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
