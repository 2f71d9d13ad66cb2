// service содержит сценарии аутентификации поверх ядра:
// вход по email+пароль, ротацию и отзыв refresh-токенов (API-клиенты)
// и вход/выход с серверной сессией (интерактивные клиенты).
//
// Основные аспекты:
//   - Service не хранит состояние запроса и безопасен для конкурентного
//     использования, если потокобезопасны переданные хранилища;
//   - ошибки проверки учётных данных возвращаются видами autherr,
//     неверная пара логин/пароль — ErrInvalidCredentials;
//   - маппинг в HTTP-статусы/gRPC-коды выполняет транспорт.
package service

import (
	"errors"
	"fmt"

	"github.com/pribylovaa/go-league-auth/internal/autherr"

	"github.com/pribylovaa/go-league-auth/internal/metrics"
	"github.com/pribylovaa/go-league-auth/internal/password"
	"github.com/pribylovaa/go-league-auth/internal/refresh"
	"github.com/pribylovaa/go-league-auth/internal/session"
	"github.com/pribylovaa/go-league-auth/internal/storage"
	"github.com/pribylovaa/go-league-auth/internal/token"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Транспорт: HTTP 401 / редирект на страницу входа.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnavailable — сбой записи в хранилище (сохранение/отзыв refresh-записи,
	// создание/удаление сессии). Транспорт: HTTP 503. Сбои чтения на пути
	// проверки учётных данных так не помечаются и дают обычный отказ аутентификации.
	ErrUnavailable = errors.New("service unavailable")

	// ErrRefreshTokenCollision — повторная коллизия хэша refresh-токена при сохранении.
	// Транспорт: HTTP 500.
	ErrRefreshTokenCollision = errors.New("refresh token collision")
)

// Service описывает сценарии аутентификации.
type Service struct {
	users    storage.UserStorage
	tokens   *token.Manager
	refresh  *refresh.Store
	sessions session.Store
	hasher   *password.Hasher
	metrics  *metrics.Metrics // может быть nil
}

// Option настраивает Service.
type Option func(*Service)

// WithMetrics подключает счётчики входов и ротаций.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New создаёт новый экземпляр Service.
func New(
	users storage.UserStorage,
	tokens *token.Manager,
	refreshStore *refresh.Store,
	sessions session.Store,
	hasher *password.Hasher,
	opts ...Option,
) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		refresh:  refreshStore,
		sessions: sessions,
		hasher:   hasher,
	}
	for _, o := range opts {
		o(s)
	}

	return s
}

// unavailable оборачивает ошибку записи в хранилище; сбой хранилища
// дополнительно помечается ErrUnavailable.
func unavailable(op string, err error) error {
	if autherr.KindOf(err) != autherr.KindStorageFailure {
		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
