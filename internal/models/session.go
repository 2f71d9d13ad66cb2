package models

import (
	"time"

	"github.com/google/uuid"
)

// Session — серверная сессия интерактивного клиента со скользящим сроком жизни.
type Session struct {
	ID          string    `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired сообщает, истекла ли сессия к моменту now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity возвращает идентичность владельца сессии.
func (s *Session) Identity() Identity {
	return Identity{
		UserID:      s.UserID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
	}
}
