package interceptors

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/gate"
	"github.com/pribylovaa/go-league-auth/internal/metrics"
	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
)

// Сообщения codes.Unauthenticated. Совпадают с кодами HTTP-конверта.
const (
	MsgMissingToken = "missing_token"
	MsgTokenExpired = "token_expired"
	MsgInvalidToken = "invalid_token"
)

// Префиксы служебных сервисов, доступных без токена.
var publicPrefixes = []string{
	"/grpc.health.v1.Health/",
	"/grpc.reflection.",
}

// UnaryAuth — bearer-гейт для gRPC: читает "authorization: Bearer <token>"
// из metadata, проверяет его через v и кладёт личность в контекст.
// Отказ — codes.Unauthenticated с сообщением missing_token|token_expired|invalid_token.
// Методы из publicMethods и служебные health/reflection пропускаются без проверки.
func UnaryAuth(v gate.Verifier, m *metrics.Metrics, publicMethods ...string) grpc.UnaryServerInterceptor {
	g := newBearerGate(v, m, publicMethods)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := g.check(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(ctx, req)
	}
}

// StreamAuth — тот же гейт для streaming-методов. Личность доступна
// обработчику через ss.Context().
func StreamAuth(v gate.Verifier, m *metrics.Metrics, publicMethods ...string) grpc.StreamServerInterceptor {
	g := newBearerGate(v, m, publicMethods)

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := g.check(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &identityStream{ServerStream: ss, ctx: ctx})
	}
}

// identityStream подменяет контекст стрима контекстом с личностью.
type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context { return s.ctx }

type bearerGate struct {
	verifier gate.Verifier
	metrics  *metrics.Metrics
	public   map[string]struct{}
}

func newBearerGate(v gate.Verifier, m *metrics.Metrics, publicMethods []string) *bearerGate {
	public := make(map[string]struct{}, len(publicMethods))
	for _, pm := range publicMethods {
		public[pm] = struct{}{}
	}

	return &bearerGate{verifier: v, metrics: m, public: public}
}

// check возвращает контекст с личностью или ошибку codes.Unauthenticated.
func (g *bearerGate) check(ctx context.Context, method string) (context.Context, error) {
	if isPublic(g.public, method) {
		return ctx, nil
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("authorization"); len(vals) > 0 {
			header = vals[0]
		}
	}

	raw, err := gate.ExtractBearer(header)
	if err != nil {
		return nil, deny(ctx, method, err, g.metrics)
	}

	identity, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, deny(ctx, method, err, g.metrics)
	}

	return gate.WithIdentity(ctx, identity), nil
}

func isPublic(public map[string]struct{}, method string) bool {
	if _, ok := public[method]; ok {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(method, p) {
			return true
		}
	}

	return false
}

func deny(ctx context.Context, method string, err error, m *metrics.Metrics) error {
	kind := autherr.KindOf(err)
	m.GateRejected(metrics.GateGRPC, kind.String())

	lvl := slog.LevelInfo
	if kind == autherr.KindStorageFailure || kind == autherr.KindUnknown {
		lvl = slog.LevelError
	}
	log.From(ctx).LogAttrs(ctx, lvl, "auth_rejected",
		slog.String("gate", metrics.GateGRPC),
		slog.String("kind", kind.String()),
		slog.String("method", method),
		slog.String("err", err.Error()),
	)

	msg := MsgInvalidToken
	switch kind {
	case autherr.KindMissingCredential:
		msg = MsgMissingToken
	case autherr.KindExpired:
		msg = MsgTokenExpired
	}

	return status.Error(codes.Unauthenticated, msg)
}
