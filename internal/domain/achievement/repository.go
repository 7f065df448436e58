package achievement

import (
	"context"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// Repository - хранилище открытых достижений пользователя.
type Repository interface {
	// Load возвращает открытые достижения пользователя.
	Load(ctx context.Context, userID shared.UserID) ([]Achievement, error)

	// Save заменяет набор достижений пользователя целиком.
	Save(ctx context.Context, userID shared.UserID, unlocked []Achievement) error
}
