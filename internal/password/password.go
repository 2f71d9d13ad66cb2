// password хэширует и проверяет пароли входа (bcrypt).
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost — стоимость bcrypt по умолчанию.
const DefaultCost = 12

// Hasher хэширует пароли с заданной стоимостью bcrypt.
// Соль генерируется bcrypt заново на каждый вызов Hash.
type Hasher struct {
	cost  int
	dummy []byte
}

// New создаёт Hasher. cost вне [bcrypt.MinCost, bcrypt.MaxCost] — ошибка конфигурации.
func New(cost int) (*Hasher, error) {
	const op = "password.New"

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%s: bcrypt cost %d out of range", op, cost)
	}

	// dummy — хэш для выравнивания времени ответа при неизвестном email.
	dummy, err := bcrypt.GenerateFromPassword([]byte("league-auth-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Hash возвращает bcrypt-хэш пароля.
func (h *Hasher) Hash(plain string) (string, error) {
	const op = "password.Hash"

	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(b), nil
}

// Verify сравнивает пароль с хэшем. Битый хэш — false, не ошибка.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyDummy тратит столько же времени, сколько Verify, и всегда возвращает false.
func (h *Hasher) VerifyDummy(plain string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
	return false
}
