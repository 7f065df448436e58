package query

import (
	"context"
	"fmt"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/achievement"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACHIEVEMENTS QUERY
// Показывает весь предопределённый набор значков: открытые с датой
// открытия, остальные - как цели, к которым стоит стремиться.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementView - значок в выдаче, открытый или ещё нет.
type AchievementView struct {
	ID          string               `json:"id,omitempty"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Icon        string               `json:"icon"`
	Category    achievement.Category `json:"category"`
	Unlocked    bool                 `json:"unlocked"`
	UnlockedAt  *time.Time           `json:"unlockedAt,omitempty"`
}

// GetAchievementsHandler возвращает достижения пользователя.
type GetAchievementsHandler struct {
	achievementRepo achievement.Repository
}

// NewGetAchievementsHandler создаёт новый GetAchievementsHandler.
func NewGetAchievementsHandler(achievementRepo achievement.Repository) *GetAchievementsHandler {
	return &GetAchievementsHandler{achievementRepo: achievementRepo}
}

// Handle возвращает предопределённые значки с признаком открытия.
func (h *GetAchievementsHandler) Handle(ctx context.Context, userID shared.UserID) ([]AchievementView, error) {
	unlocked, err := h.achievementRepo.Load(ctx, userID.OrAnonymous())
	if err != nil {
		return nil, fmt.Errorf("get_achievements: %w", err)
	}

	byTitle := make(map[string]*achievement.Achievement, len(unlocked))
	for i := range unlocked {
		byTitle[unlocked[i].Title] = &unlocked[i]
	}

	views := make([]AchievementView, 0, len(achievement.Rules))
	for _, rule := range achievement.Rules {
		view := AchievementView{
			Title:       rule.Title,
			Description: rule.Description,
			Icon:        rule.Icon,
			Category:    rule.Category,
		}
		if a, ok := byTitle[rule.Title]; ok {
			view.ID = a.ID
			view.Unlocked = true
			t := a.UnlockedAt
			view.UnlockedAt = &t
		}
		views = append(views, view)
	}
	return views, nil
}
