// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку ядра или сервиса (виды autherr, ErrInvalidCredentials),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - стабильный машиночитаемый code и безопасное message без утечки деталей.
//
// Отказы гейтов всегда 401 с одним из трёх кодов: missing_token,
// token_expired, invalid_token. Точная причина остаётся в логах сервера.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// Стабильные коды ответов гейта.
const (
	CodeMissingToken = "missing_token"
	CodeInvalidToken = "invalid_token"
	CodeTokenExpired = "token_expired"
)

// ErrInvalidArgument — тело запроса не прошло разбор/валидацию.
var ErrInvalidArgument = stderrors.New("invalid argument")

// APIError — единый формат для клиентов.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// FromAuth маппит отказ гейта. Всегда 401; любая ошибка кроме
// MissingCredential/Expired (включая сбой хранилища) даёт invalid_token.
func FromAuth(err error) (int, ErrorResponse) {
	switch autherr.KindOf(err) {
	case autherr.KindMissingCredential:
		return http.StatusUnauthorized, resp(CodeMissingToken, "missing token")
	case autherr.KindExpired:
		return http.StatusUnauthorized, resp(CodeTokenExpired, "token expired")
	default:
		return http.StatusUnauthorized, resp(CodeInvalidToken, "invalid token")
	}
}

// ToHTTP маппит ошибку операции (login/refresh/logout).
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - ErrInvalidArgument — 400;
//   - ErrInvalidCredentials — 401/invalid_credentials;
//   - service.ErrUnavailable (сбой записи) — 503/unavailable без деталей;
//   - виды autherr — как FromAuth; сбой чтения при проверке учётных
//     данных (KindStorageFailure без ErrUnavailable) даёт 401/invalid_token;
//   - отмена/таймаут контекста — 499/504;
//   - прочее — 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, resp("internal", "internal error")
	case stderrors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, resp("invalid_argument", "invalid argument")
	case stderrors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, resp("invalid_credentials", "invalid credentials")
	case stderrors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, resp("unavailable", "service unavailable")
	case autherr.KindOf(err) != autherr.KindUnknown:
		return FromAuth(err)
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, resp("canceled", "canceled")
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, resp("deadline_exceeded", "deadline exceeded")
	default:
		return http.StatusInternalServerError, resp("internal", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := ToHTTP(err)
	write(w, r, status, body)
}

// WriteAuthError пишет отказ гейта (401).
func WriteAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := FromAuth(err)
	w.Header().Set("WWW-Authenticate", `Bearer error="`+body.Error.Code+`"`)
	write(w, r, status, body)
}

func write(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		body.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func resp(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}
