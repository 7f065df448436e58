package course

import (
	"context"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// Repository - хранилище курсов пользователя. Как и в остальных
// доменах, список сохраняется целиком.
type Repository interface {
	// Load возвращает все курсы пользователя. Пустой список, если
	// курсов ещё нет.
	Load(ctx context.Context, userID shared.UserID) ([]Course, error)

	// Save заменяет список курсов пользователя целиком.
	Save(ctx context.Context, userID shared.UserID, courses []Course) error
}
