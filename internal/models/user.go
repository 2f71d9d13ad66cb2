package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись пользователя (только чтение).
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity возвращает публичную часть учётной записи.
func (u *User) Identity() Identity {
	return Identity{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}
