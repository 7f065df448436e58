package command

import (
	"context"
	"fmt"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE COURSE COMMAND
// Applies a partial update to a course and derives the completion side
// effects: every net new lesson completion records one lesson activity and
// advances active standalone goals by one; every net new exam completion
// records one exam activity. Un-completing something never reverts a
// previously recorded activity or goal increment. Achievement evaluation
// runs asynchronously off the published events, after the writes land.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateCourseCommand contains a partial course update.
type UpdateCourseCommand struct {
	UserID   shared.UserID
	CourseID string
	Patch    course.Patch

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpdateCourseCommand) Validate() error {
	if c.CourseID == "" {
		return shared.ErrInvalidID
	}
	return nil
}

// UpdateCourseResult contains the result of the update.
type UpdateCourseResult struct {
	Course *course.Course

	// NewLessonCompletions is the number of lessons newly completed
	// by this update.
	NewLessonCompletions int

	// NewExamCompletions is the number of exams newly completed by
	// this update.
	NewExamCompletions int

	// CompletedGoalIDs lists standalone goals that crossed into
	// completion as a side effect.
	CompletedGoalIDs []string
}

// UpdateCourseHandler handles the UpdateCourseCommand.
type UpdateCourseHandler struct {
	courseRepo     course.Repository
	goalRepo       goal.Repository
	recordActivity *RecordActivityHandler
	publisher      shared.EventPublisher
}

// NewUpdateCourseHandler creates a new UpdateCourseHandler.
func NewUpdateCourseHandler(
	courseRepo course.Repository,
	goalRepo goal.Repository,
	recordActivity *RecordActivityHandler,
	publisher shared.EventPublisher,
) *UpdateCourseHandler {
	return &UpdateCourseHandler{
		courseRepo:     courseRepo,
		goalRepo:       goalRepo,
		recordActivity: recordActivity,
		publisher:      publisher,
	}
}

// Handle executes the update course command.
func (h *UpdateCourseHandler) Handle(ctx context.Context, cmd UpdateCourseCommand) (*UpdateCourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	userID := cmd.UserID.OrAnonymous()

	courses, err := h.courseRepo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update_course: failed to load courses: %w", err)
	}

	idx := -1
	for i := range courses {
		if courses[i].ID == cmd.CourseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, shared.ErrCourseNotFound
	}

	before := courses[idx]
	updated := courses[idx]
	updated.Normalize()
	if err := updated.Apply(cmd.Patch, timeutil.Now()); err != nil {
		return nil, err
	}
	courses[idx] = updated

	if err := h.courseRepo.Save(ctx, userID, courses); err != nil {
		return nil, fmt.Errorf("update_course: failed to save courses: %w", err)
	}

	delta := course.DiffCompletions(&before, &updated)
	result := &UpdateCourseResult{
		Course:               &courses[idx],
		NewLessonCompletions: delta.Lessons,
		NewExamCompletions:   delta.Exams,
	}

	// One activity per discrete completion, recorded after the course
	// write is durable. A failed side effect does not roll back the
	// update itself.
	for i := 0; i < delta.Lessons; i++ {
		_, _ = h.recordActivity.Handle(ctx, RecordActivityCommand{
			UserID:        userID,
			Kind:          streak.ActivityLesson,
			CourseID:      updated.ID,
			CorrelationID: cmd.CorrelationID,
		})
	}
	for i := 0; i < delta.Exams; i++ {
		_, _ = h.recordActivity.Handle(ctx, RecordActivityCommand{
			UserID:        userID,
			Kind:          streak.ActivityExam,
			CourseID:      updated.ID,
			CorrelationID: cmd.CorrelationID,
		})
	}

	if delta.Lessons > 0 {
		completed, err := h.advanceStandaloneGoals(ctx, userID, delta.Lessons)
		if err != nil {
			return nil, err
		}
		result.CompletedGoalIDs = completed
	}

	_ = h.publisher.Publish(shared.NewCourseChangedEvent(shared.EventCourseUpdated, userID.String(), updated.ID, updated.Title))

	return result, nil
}

// advanceStandaloneGoals nudges every active standalone goal by the
// number of lessons completed. Goals embedded in courses are owned by
// their course and are never touched here.
func (h *UpdateCourseHandler) advanceStandaloneGoals(ctx context.Context, userID shared.UserID, delta int) ([]string, error) {
	goals, err := h.goalRepo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update_course: failed to load goals: %w", err)
	}

	now := timeutil.Now()
	var completed []string
	changed := false
	for i := range goals {
		g := &goals[i]
		g.Normalize()
		if g.IsCourseScoped() || !g.IsActive(now) {
			continue
		}
		if g.Advance(delta) {
			completed = append(completed, g.ID)
		}
		changed = true
	}
	if !changed {
		return nil, nil
	}

	if err := h.goalRepo.Save(ctx, userID, goals); err != nil {
		return nil, fmt.Errorf("update_course: failed to save goals: %w", err)
	}

	for i := range goals {
		for _, id := range completed {
			if goals[i].ID == id {
				_ = h.publisher.Publish(shared.NewGoalCompletedEvent(userID.String(), goals[i].ID, goals[i].Title))
			}
		}
	}
	return completed, nil
}
