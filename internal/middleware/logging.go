package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/tallysheet/internal/metrics"
)

// RequestIDHeader carries the per-call request id back to the client.
const RequestIDHeader = "X-Request-Id"

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// and records its duration. It logs the procedure name, request id, user
// ID, duration, and any error codes/messages. m may be nil.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			requestID := req.Header().Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			userID := GetUserID(ctx) // 0 if pre-auth

			resp, err := next(ctx, req)

			elapsed := time.Since(start)
			m.ObserveRPC(procedure, elapsed)
			duration := elapsed.Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					connectErr.Meta().Set(RequestIDHeader, requestID)
					slog.Warn("RPC error",
						"procedure", procedure,
						"request_id", requestID,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"user_id", userID,
						"duration_ms", duration,
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"request_id", requestID,
						"error", err,
						"user_id", userID,
						"duration_ms", duration,
					)
				}
			} else {
				resp.Header().Set(RequestIDHeader, requestID)
				slog.Info("RPC ok",
					"procedure", procedure,
					"request_id", requestID,
					"user_id", userID,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
