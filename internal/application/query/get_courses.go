// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSES QUERY
// Возвращает курсы пользователя в нормализованном виде: записи старых
// клиентов чинятся при чтении, а не роняют выдачу.
// ══════════════════════════════════════════════════════════════════════════════

// GetCoursesHandler возвращает курсы пользователя.
type GetCoursesHandler struct {
	courseRepo course.Repository
}

// NewGetCoursesHandler создаёт новый GetCoursesHandler.
func NewGetCoursesHandler(courseRepo course.Repository) *GetCoursesHandler {
	return &GetCoursesHandler{courseRepo: courseRepo}
}

// Handle возвращает все курсы пользователя.
func (h *GetCoursesHandler) Handle(ctx context.Context, userID shared.UserID) ([]course.Course, error) {
	courses, err := h.courseRepo.Load(ctx, userID.OrAnonymous())
	if err != nil {
		return nil, fmt.Errorf("get_courses: %w", err)
	}
	for i := range courses {
		courses[i].Normalize()
	}
	return courses, nil
}

// HandleOne возвращает один курс по идентификатору.
func (h *GetCoursesHandler) HandleOne(ctx context.Context, userID shared.UserID, courseID string) (*course.Course, error) {
	courses, err := h.Handle(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].ID == courseID {
			return &courses[i], nil
		}
	}
	return nil, shared.ErrCourseNotFound
}
