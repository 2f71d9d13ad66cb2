package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshTokenRecord — серверное зеркало refresh-токена.
//
// Описание:
//   - TokenHash — keyed digest токена; сам токен не хранится;
//   - RevokedAt выставляется ровно один раз (rotation/logout) и больше не сбрасывается.
type RefreshTokenRecord struct {
	ID        uuid.UUID
	TokenHash string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Revoked сообщает, отозвана ли запись.
func (r *RefreshTokenRecord) Revoked() bool {
	return r.RevokedAt != nil
}
