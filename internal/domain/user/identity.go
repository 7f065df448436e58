package user

import (
	"context"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// IdentityProvider - граница с провайдером идентичности. Ядро
// считает все пять операций непрозрачными и ненадёжными: любая
// ошибка провайдера доносится до пользователя без пересказа и без
// повторных попыток на этом уровне.
type IdentityProvider interface {
	// SignIn аутентифицирует по email и паролю.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignUp регистрирует нового пользователя.
	SignUp(ctx context.Context, email, password, username string) (*Session, error)

	// SendPasswordReset отправляет письмо для сброса пароля.
	SendPasswordReset(ctx context.Context, email string) error

	// UpdatePassword меняет пароль текущего пользователя.
	UpdatePassword(ctx context.Context, userID shared.UserID, newPassword string) error

	// UpdateProfile меняет отображаемое имя текущего пользователя.
	UpdateProfile(ctx context.Context, userID shared.UserID, username string) (*User, error)
}

// TokenVerifier проверяет токен доступа и возвращает пользователя.
// Отделён от IdentityProvider: проверка нужна каждому запросу,
// остальные операции - только ручкам аутентификации.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*User, error)
}

// AccountRepository - хранилище локальных учётных записей.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id shared.UserID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, account *Account) error
}

// ResetTokenRepository - хранилище одноразовых токенов сброса пароля.
type ResetTokenRepository interface {
	Store(ctx context.Context, token string, userID shared.UserID) error
	Consume(ctx context.Context, token string) (shared.UserID, error)
}
