// gate — проверка учётных данных входящего запроса.
//
// Две независимые реализации одного контракта Verifier:
//   - Bearer — самодостаточный access-токен, без обращения к хранилищу;
//   - Cookie — подписанный id серверной сессии, проверяемый по таблице сессий
//     со скользящим продлением срока.
//
// Транспорт (HTTP-мидлвары, gRPC-интерсептор) решает, как ответить на отказ.
package gate

import (
	"context"

	"github.com/pribylovaa/go-league-auth/internal/models"
)

// Verifier проверяет предъявленные учётные данные и возвращает личность.
// Ошибки — виды autherr.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*models.Identity, error)
}

type ctxKey int

const (
	identityKey ctxKey = iota
	sessionKey
)

// WithIdentity кладёт личность в контекст.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom достаёт личность, положенную гейтом.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*models.Identity)
	return id, ok && id != nil
}

// WithSession кладёт сессию в контекст.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom достаёт сессию, положенную cookie-гейтом.
func SessionFrom(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*models.Session)
	return s, ok && s != nil
}
