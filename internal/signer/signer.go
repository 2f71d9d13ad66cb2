// signer подписывает непрозрачные идентификаторы (id сессии) HMAC-SHA256
// и проверяет подпись за постоянное время.
//
// Формат значения: "{id}.{hex(HMAC-SHA256(secret, id))}". Значение нигде
// не хранится и пересчитывается на каждый запрос.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// MinSecretLen — минимальная длина секрета в байтах.
const MinSecretLen = 32

// devInsecureSecret допустим только вне prod, см. ResolveSecret.
const devInsecureSecret = "league-auth-insecure-development-secret-change-me"

const sep = "."

var (
	// ErrSecretTooShort — секрет короче MinSecretLen.
	ErrSecretTooShort = errors.New("signing secret is shorter than 32 bytes")
	// ErrSecretRequired — секрет не задан в production.
	ErrSecretRequired = errors.New("signing secret is required in production")
)

// Sign возвращает подписанное значение для id.
func Sign(id string, secret []byte) string {
	return id + sep + mac(id, secret)
}

// Verify проверяет подписанное значение и возвращает id.
// Битый ввод ("", ".", без разделителя, пустой id или подпись) — ("", false).
func Verify(signed string, secret []byte) (string, bool) {
	id, sig, ok := strings.Cut(signed, sep)
	if !ok || id == "" || sig == "" {
		return "", false
	}

	expected := mac(id, secret)

	// ConstantTimeCompare сразу возвращает 0 при разной длине.
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", false
	}

	return id, true
}

func mac(id string, secret []byte) string {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(id))
	return hex.EncodeToString(m.Sum(nil))
}

// Signer владеет процессным секретом. Создаётся один раз при старте
// и передаётся во все пути запроса.
type Signer struct {
	secret []byte
}

// New проверяет длину секрета и создаёт Signer.
func New(secret []byte) (*Signer, error) {
	const op = "signer.New"

	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("%s: %w", op, ErrSecretTooShort)
	}

	s := make([]byte, len(secret))
	copy(s, secret)

	return &Signer{secret: s}, nil
}

// Sign подписывает id процессным секретом.
func (s *Signer) Sign(id string) string { return Sign(id, s.secret) }

// Verify проверяет значение процессным секретом.
func (s *Signer) Verify(signed string) (string, bool) { return Verify(signed, s.secret) }

// Secret возвращает копию секрета (нужна для keyed digest refresh-токенов).
func (s *Signer) Secret() []byte {
	out := make([]byte, len(s.secret))
	copy(out, s.secret)
	return out
}

// ResolveSecret выбирает секрет подписи для окружения env.
//
// Поведение:
//   - prod: секрет обязателен и не короче MinSecretLen;
//   - иначе: пустой секрет заменяется небезопасным dev-значением с громким Warn;
//     заданный, но короткий секрет — ошибка в любом окружении.
func ResolveSecret(env, secret string, lg *slog.Logger) ([]byte, error) {
	const op = "signer.ResolveSecret"

	if secret == "" {
		if env == "prod" {
			return nil, fmt.Errorf("%s: %w", op, ErrSecretRequired)
		}

		if lg == nil {
			lg = slog.Default()
		}
		lg.Warn("INSECURE_DEFAULT_SESSION_SECRET",
			slog.String("op", op),
			slog.String("env", env),
			slog.String("hint", "set AUTH_SESSION_SECRET (>=32 bytes); never run this in production"),
		)
		return []byte(devInsecureSecret), nil
	}

	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("%s: %w", op, ErrSecretTooShort)
	}

	return []byte(secret), nil
}
