package query

import (
	"context"
	"fmt"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GOALS QUERY
// Пользователь видит единый список целей: самостоятельные плюс встроенные
// в курсы. Проекция только для чтения - встроенные цели редактируются
// исключительно через свой курс.
// ══════════════════════════════════════════════════════════════════════════════

// GoalView - цель в объединённой проекции.
type GoalView struct {
	goal.Goal

	// CourseTitle - название курса-владельца для встроенных целей.
	CourseTitle string `json:"courseTitle,omitempty"`

	// Editable - можно ли редактировать цель через API самостоятельных
	// целей.
	Editable bool `json:"editable"`
}

// GetGoalsHandler возвращает объединённую проекцию целей.
type GetGoalsHandler struct {
	goalRepo   goal.Repository
	courseRepo course.Repository
}

// NewGetGoalsHandler создаёт новый GetGoalsHandler.
func NewGetGoalsHandler(goalRepo goal.Repository, courseRepo course.Repository) *GetGoalsHandler {
	return &GetGoalsHandler{goalRepo: goalRepo, courseRepo: courseRepo}
}

// Handle возвращает самостоятельные и встроенные цели одним списком.
func (h *GetGoalsHandler) Handle(ctx context.Context, userID shared.UserID) ([]GoalView, error) {
	uid := userID.OrAnonymous()

	standalone, err := h.goalRepo.Load(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get_goals: %w", err)
	}
	courses, err := h.courseRepo.Load(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get_goals: %w", err)
	}

	views := make([]GoalView, 0, len(standalone))
	for i := range standalone {
		standalone[i].Normalize()
		views = append(views, GoalView{Goal: standalone[i], Editable: true})
	}
	for i := range courses {
		courses[i].Normalize()
		for j := range courses[i].Goals {
			views = append(views, GoalView{
				Goal:        courses[i].Goals[j],
				CourseTitle: courses[i].Title,
				Editable:    false,
			})
		}
	}
	return views, nil
}
