package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE COURSE COMMAND
// Creates an empty course. Lessons, exams and course goals arrive through
// later updates, so creation never produces streak or goal side effects.
// ══════════════════════════════════════════════════════════════════════════════

// CreateCourseCommand contains the data to create a course.
type CreateCourseCommand struct {
	UserID      shared.UserID
	Title       string
	Description string
	Color       string

	// CorrelationID for tracing.
	CorrelationID string
}

// CreateCourseResult contains the created course.
type CreateCourseResult struct {
	Course *course.Course
}

// CreateCourseHandler handles the CreateCourseCommand.
type CreateCourseHandler struct {
	courseRepo course.Repository
	publisher  shared.EventPublisher
}

// NewCreateCourseHandler creates a new CreateCourseHandler.
func NewCreateCourseHandler(courseRepo course.Repository, publisher shared.EventPublisher) *CreateCourseHandler {
	return &CreateCourseHandler{courseRepo: courseRepo, publisher: publisher}
}

// Handle executes the create course command.
func (h *CreateCourseHandler) Handle(ctx context.Context, cmd CreateCourseCommand) (*CreateCourseResult, error) {
	userID := cmd.UserID.OrAnonymous()

	color := shared.Color(cmd.Color)
	if cmd.Color != "" && !color.IsValid() {
		return nil, shared.ErrInvalidColor
	}

	c, err := course.New(uuid.NewString(), cmd.Title, cmd.Description, color, timeutil.Now())
	if err != nil {
		return nil, err
	}

	courses, err := h.courseRepo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create_course: failed to load courses: %w", err)
	}

	courses = append(courses, *c)
	if err := h.courseRepo.Save(ctx, userID, courses); err != nil {
		return nil, fmt.Errorf("create_course: failed to save courses: %w", err)
	}

	_ = h.publisher.Publish(shared.NewCourseChangedEvent(shared.EventCourseCreated, userID.String(), c.ID, c.Title))

	return &CreateCourseResult{Course: c}, nil
}
