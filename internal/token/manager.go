// token выпускает и проверяет самодостаточные JWT (RS256).
//
// Основные аспекты:
//   - пара ключей загружается один раз в New; битые/отсутствующие ключи — ошибка конструктора;
//   - exp - iat строго равен TTL, метки времени с точностью до секунды;
//   - Validate* не обращается к хранилищу отзыва: для refresh-токенов это
//     отдельная обязательная проверка вызывающей стороны (см. internal/refresh).
package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/models"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Config — параметры Manager.
type Config struct {
	PrivateKeyPath string
	PublicKeyPath  string
	Issuer         string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
}

// Manager выпускает и валидирует токены. Безопасен для конкурентного использования.
type Manager struct {
	priv       *rsa.PrivateKey
	pub        *rsa.PublicKey
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// Option настраивает Manager.
type Option func(*Manager)

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New загружает пару ключей из файлов cfg и создаёт Manager.
func New(cfg Config, opts ...Option) (*Manager, error) {
	const op = "token.New"

	privPEM, pubPEM, err := loadKeyFiles(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m, err := NewFromPEM(privPEM, pubPEM, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

// NewFromPEM создаёт Manager из PEM-байтов. Пути в cfg игнорируются.
func NewFromPEM(privPEM, pubPEM []byte, cfg Config, opts ...Option) (*Manager, error) {
	const op = "token.NewFromPEM"

	priv, pub, err := parseKeys(privPEM, pubPEM)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	m := &Manager{
		priv:       priv,
		pub:        pub,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(m)
	}

	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		popts = append(popts, jwt.WithIssuer(m.issuer))
	}
	m.parser = jwt.NewParser(popts...)

	return m, nil
}

// AccessTTL возвращает TTL access-токена.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL возвращает TTL refresh-токена.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// GenerateAccessToken выпускает access-токен (token_type="access").
func (m *Manager) GenerateAccessToken(userID uuid.UUID, email, name string) (string, error) {
	tok, _, err := m.sign(TypeAccess, userID, email, name, m.now())
	return tok, err
}

// GenerateRefreshToken выпускает refresh-токен (token_type="refresh").
func (m *Manager) GenerateRefreshToken(userID uuid.UUID, email, name string) (string, error) {
	tok, _, err := m.sign(TypeRefresh, userID, email, name, m.now())
	return tok, err
}

// GeneratePair выпускает access+refresh от одного момента времени.
func (m *Manager) GeneratePair(id models.Identity) (*models.TokenPair, error) {
	const op = "token.GeneratePair"

	now := m.now()

	access, accessExp, err := m.sign(TypeAccess, id.UserID, id.Email, id.DisplayName, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, refreshExp, err := m.sign(TypeRefresh, id.UserID, id.Email, id.DisplayName, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) sign(typ Type, userID uuid.UUID, email, name string, now time.Time) (string, time.Time, error) {
	const op = "token.sign"

	ttl := m.accessTTL
	if typ == TypeRefresh {
		ttl = m.refreshTTL
	}

	iat := now.UTC().Truncate(time.Second)
	exp := iat.Add(ttl)

	claims := Claims{
		Email:     email,
		Name:      name,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.priv)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, exp, nil
}

// ValidateAccessToken проверяет подпись, срок и тип "access".
func (m *Manager) ValidateAccessToken(raw string) (*Claims, error) {
	return m.validate(raw, TypeAccess)
}

// ValidateRefreshToken проверяет подпись, срок и тип "refresh".
// Хранилище отзыва не консультируется.
func (m *Manager) ValidateRefreshToken(raw string) (*Claims, error) {
	return m.validate(raw, TypeRefresh)
}

func (m *Manager) validate(raw string, want Type) (*Claims, error) {
	const op = "token.validate"

	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.pub, nil
	})
	if err != nil {
		return nil, autherr.E(op, kindFromJWT(err), err)
	}

	if claims.TokenType != want {
		return nil, autherr.E(op, autherr.KindWrongCredentialType,
			fmt.Errorf("token_type %q, want %q", claims.TokenType, want))
	}

	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return claims, nil
}

// kindFromJWT переводит ошибки jwt/v5 в таксономию.
// Подпись проверяется парсером до claims, поэтому просроченный токен
// с битой подписью даёт InvalidSignature, а не Expired.
func kindFromJWT(err error) autherr.Kind {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return autherr.KindMalformedCredential
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return autherr.KindInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return autherr.KindExpired
	default:
		return autherr.KindInvalidSignature
	}
}
