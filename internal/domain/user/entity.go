// ══════════════════════════════════════════════════════════════════
// ДОМЕННАЯ МОДЕЛЬ: ПОЛЬЗОВАТЕЛЬ И СЕССИЯ
// ══════════════════════════════════════════════════════════════════

package user

import (
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// User - учётная запись, какой её видит приложение. Провайдер
// идентичности (внешний или локальный) является источником истины.
type User struct {
	ID        shared.UserID `json:"id"`
	Email     string        `json:"email"`
	Username  string        `json:"username"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Session - результат успешного входа: пользователь и токен доступа.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Account - локальная учётная запись с хэшем пароля. Используется
// только локальным провайдером идентичности.
type Account struct {
	ID           shared.UserID
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
