package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong возвращается для паролей длиннее 72 байт (ограничение bcrypt)
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher хеширует пароли через bcrypt
// Соль генерируется на каждый вызов и хранится внутри digest
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создает hasher с указанной стоимостью
// Стоимость вне диапазона bcrypt заменяется на bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost возвращает используемую стоимость bcrypt
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash возвращает bcrypt digest пароля со свежей случайной солью
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// Verify проверяет пароль по сохраненному digest
// Соль извлекается из digest, сравнение выполняется за постоянное время.
// Для поврежденного или чужого формата digest возвращает false
func (h *PasswordHasher) Verify(password, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
