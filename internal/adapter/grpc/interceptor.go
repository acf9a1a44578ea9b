package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/vigipay/vigipay-backend/internal/auth"
)

// publicMethods are served without a token
var publicMethods = map[string]bool{
	FullMethod("LookupAccount"): true,
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the bearer JWT from the "authorization" metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the user ID attached to the context.
func AuthInterceptor(secret, issuer string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		token, found := cutPrefixFold(authHeaders[0], "Bearer ")
		if !found || token == "" {
			return nil, status.Error(codes.Unauthenticated, "authorization header must be a bearer token")
		}

		claims, err := auth.ParseToken(secret, issuer, token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		userID, err := claims.UserID()
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(auth.WithUser(ctx, userID), req)
	}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}

// LoggingInterceptor logs method, status code and duration of every call
func LoggingInterceptor(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		entry := logger.WithFields(logrus.Fields{
			"method":      info.FullMethod,
			"code":        code.String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})

		switch code {
		case codes.OK:
			entry.Info("rpc completed")
		case codes.Internal, codes.Unknown, codes.Unavailable:
			entry.WithError(err).Error("rpc failed")
		default:
			entry.WithError(err).Warn("rpc rejected")
		}
		return resp, err
	}
}
