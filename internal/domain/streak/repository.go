package streak

import (
	"context"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// Repository - хранилище серии пользователя.
type Repository interface {
	// Load возвращает серию пользователя. Пустая серия, если записей
	// ещё нет.
	Load(ctx context.Context, userID shared.UserID) (*Streak, error)

	// Save сохраняет серию пользователя целиком.
	Save(ctx context.Context, userID shared.UserID, s *Streak) error
}
