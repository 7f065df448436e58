package command

import (
	"context"
	"fmt"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE COURSE COMMAND
// Removes a course together with everything it owns: lessons, exams,
// homework, notes and course-scoped goals all live inside the aggregate,
// so nothing can outlive it. Recorded streak activity is history and stays.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteCourseCommand identifies the course to delete.
type DeleteCourseCommand struct {
	UserID   shared.UserID
	CourseID string
}

// DeleteCourseHandler handles the DeleteCourseCommand.
type DeleteCourseHandler struct {
	courseRepo course.Repository
	publisher  shared.EventPublisher
}

// NewDeleteCourseHandler creates a new DeleteCourseHandler.
func NewDeleteCourseHandler(courseRepo course.Repository, publisher shared.EventPublisher) *DeleteCourseHandler {
	return &DeleteCourseHandler{courseRepo: courseRepo, publisher: publisher}
}

// Handle executes the delete course command.
func (h *DeleteCourseHandler) Handle(ctx context.Context, cmd DeleteCourseCommand) error {
	if cmd.CourseID == "" {
		return shared.ErrInvalidID
	}
	userID := cmd.UserID.OrAnonymous()

	courses, err := h.courseRepo.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete_course: failed to load courses: %w", err)
	}

	var title string
	kept := courses[:0]
	found := false
	for i := range courses {
		if courses[i].ID == cmd.CourseID {
			found = true
			title = courses[i].Title
			continue
		}
		kept = append(kept, courses[i])
	}
	if !found {
		return shared.ErrCourseNotFound
	}

	if err := h.courseRepo.Save(ctx, userID, kept); err != nil {
		return fmt.Errorf("delete_course: failed to save courses: %w", err)
	}

	_ = h.publisher.Publish(shared.NewCourseChangedEvent(shared.EventCourseDeleted, userID.String(), cmd.CourseID, title))
	return nil
}
