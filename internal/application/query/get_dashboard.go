package query

import (
	"context"
	"fmt"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// Сводка для главного экрана: курсы, цели, серия и достижения одним
// запросом. Собирается из остальных запросов, собственной логики чтения
// не имеет.
// ══════════════════════════════════════════════════════════════════════════════

// DashboardView - сводная статистика пользователя.
type DashboardView struct {
	TotalCourses     int `json:"totalCourses"`
	CompletedLessons int `json:"completedLessons"`
	WeeklyLessons    int `json:"weeklyLessons"`
	AverageProgress  int `json:"averageProgress"`

	ActiveGoals    int `json:"activeGoals"`
	CompletedGoals int `json:"completedGoals"`

	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
	StreakStatus  string `json:"streakStatus"`

	UnlockedAchievements int `json:"unlockedAchievements"`
	TotalAchievements    int `json:"totalAchievements"`
}

// GetDashboardHandler собирает сводку.
type GetDashboardHandler struct {
	courses      *GetCoursesHandler
	goals        *GetGoalsHandler
	streaks      *GetStreakHandler
	achievements *GetAchievementsHandler
}

// NewGetDashboardHandler создаёт новый GetDashboardHandler.
func NewGetDashboardHandler(
	courses *GetCoursesHandler,
	goals *GetGoalsHandler,
	streaks *GetStreakHandler,
	achievements *GetAchievementsHandler,
) *GetDashboardHandler {
	return &GetDashboardHandler{
		courses:      courses,
		goals:        goals,
		streaks:      streaks,
		achievements: achievements,
	}
}

// Handle возвращает сводку пользователя.
func (h *GetDashboardHandler) Handle(ctx context.Context, userID shared.UserID) (*DashboardView, error) {
	courses, err := h.courses.Handle(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_dashboard: %w", err)
	}
	goals, err := h.goals.Handle(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_dashboard: %w", err)
	}
	streakView, err := h.streaks.Handle(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_dashboard: %w", err)
	}
	badges, err := h.achievements.Handle(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_dashboard: %w", err)
	}

	view := &DashboardView{
		TotalCourses:      len(courses),
		CurrentStreak:     streakView.Current,
		LongestStreak:     streakView.Longest,
		StreakStatus:      string(streakView.Status),
		TotalAchievements: len(badges),
	}

	now := timeutil.Now()
	weekAgo := timeutil.StartOfDay(now).AddDate(0, 0, -6)
	progressSum := 0
	for i := range courses {
		view.CompletedLessons += courses[i].CompletedLessons()
		view.WeeklyLessons += courses[i].LessonsCompletedSince(weekAgo)
		progressSum += courses[i].Progress
	}
	if len(courses) > 0 {
		view.AverageProgress = progressSum / len(courses)
	}

	for i := range goals {
		if goals[i].Completed {
			view.CompletedGoals++
		} else if goals[i].IsActive(now) {
			view.ActiveGoals++
		}
	}

	for i := range badges {
		if badges[i].Unlocked {
			view.UnlockedAchievements++
		}
	}
	return view, nil
}
