package grpcserver

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/ncontiero/dk-tube-sub000/internal/api"
	"github.com/ncontiero/dk-tube-sub000/internal/identity"
	"github.com/ncontiero/dk-tube-sub000/internal/limiter"
)

// LoggingUnary returns a unary server interceptor for structured logging.
func LoggingUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		var remote string
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		// metadata only, never payloads
		log.Info("grpc",
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", remote),
		)
		return resp, err
	}
}

// RecoverUnary returns a unary server interceptor that recovers from panics.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", info.FullMethod),
				)
				err = status.Error(codes.Internal, "internal")
			}
		}()
		return next(ctx, req)
	}
}

// AnonymousMethods may be called without a bearer token.
var AnonymousMethods = map[string]bool{
	api.FullMethod("ListChannelPlaylists"): true,
	api.FullMethod("GetCollection"):        true,
	api.FullMethod("GetVideo"):             true,
	api.FullMethod("ListChannelVideos"):    true,
	api.FullMethod("SearchVideos"):         true,
}

const limiterScope = "bearer"

// AuthUnary verifies "authorization: Bearer <token>" and stores the identity in context.
// Methods outside the Tube service (health) pass through untouched. Peers that keep
// presenting invalid tokens are throttled through lim.
func AuthUnary(v identity.Verifier, lim limiter.Limiter, anonymous map[string]bool, log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if !isTubeMethod(info.FullMethod) {
			return next(ctx, req)
		}

		tok, err := bearerTokenFromMD(ctx)
		if err != nil {
			if anonymous[info.FullMethod] && !hasAuthorization(ctx) {
				return next(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "no auth")
		}

		id, verr := v.Verify(ctx, tok)
		if verr == nil {
			return next(identity.WithIdentity(ctx, id), req)
		}

		key := limiter.Key{Scope: limiterScope, Peer: remotePeer(ctx)}
		allowed, _, err := lim.Allow(ctx, key)
		if err != nil {
			log.Warn("limiter allow", zap.Error(err))
		} else if !allowed {
			return nil, status.Error(codes.ResourceExhausted, "rate limited")
		}
		blocked, _, err := lim.Failure(ctx, key)
		if err != nil {
			log.Warn("limiter failure", zap.Error(err))
		}
		if blocked {
			return nil, status.Error(codes.ResourceExhausted, "rate limited")
		}
		log.Debug("bearer rejected", zap.String("method", info.FullMethod), zap.Error(verr))
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
}

func isTubeMethod(full string) bool {
	return strings.HasPrefix(full, "/"+api.ServiceName+"/")
}
