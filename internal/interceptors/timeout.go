package interceptors

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WithTimeout ограничивает бюджет вызова сроком d: итоговый deadline —
// меньший из клиентского и now+d. Голые ошибки контекста из обработчика
// превращаются в codes.DeadlineExceeded/codes.Canceled без деталей.
// d<=0 — бюджет не навешивается.
func WithTimeout(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		resp, err := handler(ctx, req)
		if _, isStatus := status.FromError(err); err == nil || isStatus {
			return resp, err
		}

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, status.Error(codes.DeadlineExceeded, "deadline exceeded")
		case errors.Is(err, context.Canceled):
			return nil, status.Error(codes.Canceled, "canceled")
		}

		return resp, err
	}
}
