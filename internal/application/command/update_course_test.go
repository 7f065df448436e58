package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/inmem"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(t shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

type courseFixture struct {
	store      *inmem.Store
	courses    *inmem.CourseRepository
	goals      *inmem.GoalRepository
	streaks    *inmem.StreakRepository
	publisher  *recordingPublisher
	update     *UpdateCourseHandler
	manageGoal *ManageGoalHandler
}

func newCourseFixture() *courseFixture {
	store := inmem.NewStore()
	courses := inmem.NewCourseRepository(store)
	goals := inmem.NewGoalRepository(store)
	streaks := inmem.NewStreakRepository(store)
	publisher := &recordingPublisher{}

	recordActivity := NewRecordActivityHandler(streaks, publisher)
	return &courseFixture{
		store:      store,
		courses:    courses,
		goals:      goals,
		streaks:    streaks,
		publisher:  publisher,
		update:     NewUpdateCourseHandler(courses, goals, recordActivity, publisher),
		manageGoal: NewManageGoalHandler(goals, courses, publisher),
	}
}

func (f *courseFixture) seedCourse(t *testing.T, lessons []course.Lesson) *course.Course {
	t.Helper()
	c, err := course.New("course-1", "Go Basics", "", "", time.Now())
	require.NoError(t, err)
	c.Lessons = lessons
	c.CalculateProgress()
	require.NoError(t, f.courses.Save(context.Background(), shared.AnonymousUserID, []course.Course{*c}))
	return c
}

func lessonList(completed ...bool) []course.Lesson {
	lessons := make([]course.Lesson, len(completed))
	for i, done := range completed {
		lessons[i] = course.Lesson{
			ID:        "lesson-" + string(rune('a'+i)),
			Title:     "Lesson",
			Type:      course.LessonLab,
			Completed: done,
		}
	}
	return lessons
}

func TestUpdateCourse_NewCompletionRecordsActivity(t *testing.T) {
	f := newCourseFixture()
	f.seedCourse(t, lessonList(true, false, false, false))

	patched := lessonList(true, true, true, false)
	result, err := f.update.Handle(context.Background(), UpdateCourseCommand{
		CourseID: "course-1",
		Patch:    course.Patch{Lessons: &patched},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.NewLessonCompletions)
	assert.Equal(t, 75, result.Course.Progress)

	// Two discrete completions mean two activity events, but the streak
	// grows by at most one day.
	assert.Len(t, f.publisher.ofType(shared.EventActivityRecorded), 2)
	s, err := f.streaks.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Current)
}

func TestUpdateCourse_SingleCompletionMovesProgressOneStep(t *testing.T) {
	f := newCourseFixture()
	f.seedCourse(t, lessonList(true, true, false, false))

	patched := lessonList(true, true, true, false)
	result, err := f.update.Handle(context.Background(), UpdateCourseCommand{
		CourseID: "course-1",
		Patch:    course.Patch{Lessons: &patched},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.NewLessonCompletions)
	assert.Equal(t, 75, result.Course.Progress)
	assert.Len(t, f.publisher.ofType(shared.EventActivityRecorded), 1)
}

func TestUpdateCourse_UncompletingRevertsNothing(t *testing.T) {
	f := newCourseFixture()
	f.seedCourse(t, lessonList(true, true, true))

	patched := lessonList(true, false, false)
	result, err := f.update.Handle(context.Background(), UpdateCourseCommand{
		CourseID: "course-1",
		Patch:    course.Patch{Lessons: &patched},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.NewLessonCompletions)
	assert.Empty(t, f.publisher.ofType(shared.EventActivityRecorded))

	s, err := f.streaks.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Current, "unchecking a lesson must not touch the streak")
}

func TestUpdateCourse_MixedPatchCountsOnlyIncreases(t *testing.T) {
	f := newCourseFixture()
	f.seedCourse(t, lessonList(true, true, false, false))

	// One lesson unchecked, two new ones checked: net list moves from
	// 2 to 3 completed, but the three discrete changes yield exactly
	// two new completions.
	patched := lessonList(false, true, true, true)
	result, err := f.update.Handle(context.Background(), UpdateCourseCommand{
		CourseID: "course-1",
		Patch:    course.Patch{Lessons: &patched},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.NewLessonCompletions)
	assert.Len(t, f.publisher.ofType(shared.EventActivityRecorded), 2)
}

func TestUpdateCourse_LessonCompletionAdvancesStandaloneGoals(t *testing.T) {
	f := newCourseFixture()
	f.seedCourse(t, lessonList(false, false))

	g, err := goal.New("goal-1", "Two lessons", "", goal.TypeWeekly, 2, time.Time{}, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.goals.Save(context.Background(), shared.AnonymousUserID, []goal.Goal{*g}))

	patched := lessonList(true, true)
	result, err := f.update.Handle(context.Background(), UpdateCourseCommand{
		CourseID: "course-1",
		Patch:    course.Patch{Lessons: &patched},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"goal-1"}, result.CompletedGoalIDs)
	assert.Len(t, f.publisher.ofType(shared.EventGoalCompleted), 1)

	goals, err := f.goals.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Completed)
	assert.Equal(t, 2, goals[0].Current)
}

func TestUpdateCourse_CourseScopedGoalsAreNotAdvanced(t *testing.T) {
	f := newCourseFixture()
	c := f.seedCourse(t, lessonList(false))

	embedded := goal.Goal{ID: "embedded-1", Title: "Course goal", Type: goal.TypeCourse, Target: 5, CourseID: c.ID}
	courses, err := f.courses.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	courses[0].Goals = []goal.Goal{embedded}
	require.NoError(t, f.courses.Save(context.Background(), shared.AnonymousUserID, courses))

	patched := lessonList(true)
	result, err := f.update.Handle(context.Background(), UpdateCourseCommand{
		CourseID: "course-1",
		Patch:    course.Patch{Lessons: &patched},
	})
	require.NoError(t, err)
	assert.Empty(t, result.CompletedGoalIDs)

	courses, err = f.courses.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	assert.Equal(t, 0, courses[0].Goals[0].Current, "embedded goal belongs to the course")
}

func TestUpdateCourse_ExamCompletionRecordsExamActivity(t *testing.T) {
	f := newCourseFixture()
	f.seedCourse(t, nil)

	score := 87
	exams := []course.Exam{{ID: "exam-1", Title: "Final", Completed: true, Score: &score}}
	result, err := f.update.Handle(context.Background(), UpdateCourseCommand{
		CourseID: "course-1",
		Patch:    course.Patch{Exams: &exams},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.NewExamCompletions)
	events := f.publisher.ofType(shared.EventActivityRecorded)
	require.Len(t, events, 1)
	recorded, ok := events[0].(shared.ActivityRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, string(streak.ActivityExam), recorded.Kind)
}

func TestUpdateCourse_UnknownCourse(t *testing.T) {
	f := newCourseFixture()

	_, err := f.update.Handle(context.Background(), UpdateCourseCommand{
		CourseID: "missing",
		Patch:    course.Patch{},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateCourse_EmptyIDRejected(t *testing.T) {
	f := newCourseFixture()

	_, err := f.update.Handle(context.Background(), UpdateCourseCommand{})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
