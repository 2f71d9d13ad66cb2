// autherr описывает закрытый набор видов ошибок аутентификации.
//
// Ядро (token, refresh, session, gate) возвращает только эти виды,
// а транспорт (internal/http/errors, internal/transport/grpc) маппит их
// в HTTP-статус/gRPC-код. Сам пакет от транспорта не зависит.
package autherr

import (
	"errors"
	"fmt"
)

// Kind — вид ошибки аутентификации.
type Kind uint8

const (
	// KindUnknown — ошибка не из таксономии (считается StorageFailure на путях валидации).
	KindUnknown Kind = iota
	KindMissingCredential
	KindMalformedCredential
	KindInvalidSignature
	KindExpired
	KindRevoked
	KindWrongCredentialType
	KindNotFound
	KindStorageFailure
)

var kindNames = [...]string{
	KindUnknown:             "unknown",
	KindMissingCredential:   "missing_credential",
	KindMalformedCredential: "malformed_credential",
	KindInvalidSignature:    "invalid_signature",
	KindExpired:             "expired",
	KindRevoked:             "revoked",
	KindWrongCredentialType: "wrong_credential_type",
	KindNotFound:            "not_found",
	KindStorageFailure:      "storage_failure",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return kindNames[KindUnknown]
}

// Error — ошибка аутентификации с видом, операцией и (опционально) причиной.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает ошибки по виду: errors.Is(err, autherr.ErrExpired)
// истинно для любой *Error с KindExpired независимо от Op/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// Сентинелы для errors.Is. Сравнение идёт только по Kind.
var (
	// ErrMissingCredential — учётные данные не предъявлены (нет заголовка/cookie).
	ErrMissingCredential = &Error{Kind: KindMissingCredential}
	// ErrMalformedCredential — учётные данные предъявлены, но синтаксически битые.
	ErrMalformedCredential = &Error{Kind: KindMalformedCredential}
	// ErrInvalidSignature — подпись не сходится.
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature}
	// ErrExpired — срок действия истёк.
	ErrExpired = &Error{Kind: KindExpired}
	// ErrRevoked — учётные данные отозваны (rotation/logout).
	ErrRevoked = &Error{Kind: KindRevoked}
	// ErrWrongCredentialType — токен не того типа (refresh вместо access и наоборот).
	ErrWrongCredentialType = &Error{Kind: KindWrongCredentialType}
	// ErrNotFound — серверная запись не найдена.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrStorageFailure — хранилище недоступно/таймаут. Всегда fail closed.
	ErrStorageFailure = &Error{Kind: KindStorageFailure}
)

// E конструирует ошибку заданного вида.
func E(op string, kind Kind, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf возвращает вид ошибки. Ошибки вне таксономии дают KindUnknown,
// nil — KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}
