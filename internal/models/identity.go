package models

import "github.com/google/uuid"

// Identity — кто аутентифицирован. Берётся из учётной записи пользователя
// и не меняется на протяжении жизни выведенных из неё учётных данных.
type Identity struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}
