package query

import (
	"context"
	"fmt"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STREAK QUERY
// ══════════════════════════════════════════════════════════════════════════════

// StreakView - серия вместе с производным статусом на момент чтения.
type StreakView struct {
	Current          int               `json:"current"`
	Longest          int               `json:"longest"`
	LastActivityDate time.Time         `json:"lastActivityDate,omitempty"`
	Status           streak.Status     `json:"status"`
	Activities       []streak.Activity `json:"activities"`
}

// GetStreakHandler возвращает серию пользователя.
type GetStreakHandler struct {
	streakRepo streak.Repository
}

// NewGetStreakHandler создаёт новый GetStreakHandler.
func NewGetStreakHandler(streakRepo streak.Repository) *GetStreakHandler {
	return &GetStreakHandler{streakRepo: streakRepo}
}

// Handle возвращает серию со статусом. Статус вычисляется, хранимое
// состояние не меняется.
func (h *GetStreakHandler) Handle(ctx context.Context, userID shared.UserID) (*StreakView, error) {
	s, err := h.streakRepo.Load(ctx, userID.OrAnonymous())
	if err != nil {
		return nil, fmt.Errorf("get_streak: %w", err)
	}
	s.Normalize()

	now := timeutil.Now()
	return &StreakView{
		Current:          s.Current,
		Longest:          s.Longest,
		LastActivityDate: s.LastActivityDate,
		Status:           s.Status(now),
		Activities:       s.Activities,
	}, nil
}
