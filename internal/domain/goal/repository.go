package goal

import (
	"context"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// Repository - хранилище самостоятельных целей пользователя.
// Список сохраняется целиком: источником истины всегда является
// последняя записанная версия.
type Repository interface {
	// Load возвращает все самостоятельные цели пользователя.
	// Пустой список (не ошибка), если целей ещё нет.
	Load(ctx context.Context, userID shared.UserID) ([]Goal, error)

	// Save заменяет список целей пользователя целиком.
	Save(ctx context.Context, userID shared.UserID, goals []Goal) error
}
