package models

import "time"

// TokenPair — пара токенов, выдаваемая при логине/ротации.
//
// Описание:
//   - AccessToken — короткоживущий JWT (15 минут) для доступа к API;
//   - RefreshToken — JWT с типом "refresh" (7 дней), зеркалируется записью в БД;
//   - AccessExpiresAt/RefreshExpiresAt — моменты истечения (UTC).
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
