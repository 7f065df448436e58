package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/inmem"
)

type goalFixture struct {
	goals     *inmem.GoalRepository
	courses   *inmem.CourseRepository
	publisher *recordingPublisher
	handler   *ManageGoalHandler
}

func newGoalFixture() *goalFixture {
	store := inmem.NewStore()
	goals := inmem.NewGoalRepository(store)
	courses := inmem.NewCourseRepository(store)
	publisher := &recordingPublisher{}
	return &goalFixture{
		goals:     goals,
		courses:   courses,
		publisher: publisher,
		handler:   NewManageGoalHandler(goals, courses, publisher),
	}
}

func (f *goalFixture) seedGoal(t *testing.T, id string, target, current int) {
	t.Helper()
	g, err := goal.New(id, "Read chapters", "", goal.TypeWeekly, target, time.Time{}, time.Now())
	require.NoError(t, err)
	g.SetProgress(current)
	goals, err := f.goals.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	goals = append(goals, *g)
	require.NoError(t, f.goals.Save(context.Background(), shared.AnonymousUserID, goals))
}

func TestAddGoal(t *testing.T) {
	f := newGoalFixture()

	result, err := f.handler.Add(context.Background(), AddGoalCommand{
		Title:  "Finish the book",
		Type:   goal.TypeMonthly,
		Target: 12,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Goal.ID)
	assert.Equal(t, 0, result.Goal.Current)
	assert.False(t, result.Goal.Completed)

	goals, err := f.goals.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	assert.Len(t, goals, 1)
}

func TestAddGoal_CourseTypeRejected(t *testing.T) {
	f := newGoalFixture()

	_, err := f.handler.Add(context.Background(), AddGoalCommand{
		Title:  "Sneaky",
		Type:   goal.TypeCourse,
		Target: 1,
	})
	assert.ErrorIs(t, err, shared.ErrCourseScopedGoal)
}

func TestUpdateGoal_ProgressReported(t *testing.T) {
	f := newGoalFixture()
	f.seedGoal(t, "goal-1", 10, 9)

	current := 10
	result, err := f.handler.Update(context.Background(), UpdateGoalCommand{
		GoalID: "goal-1",
		Patch:  GoalPatch{Current: &current},
	})
	require.NoError(t, err)

	assert.True(t, result.JustComplete)
	assert.True(t, result.Goal.Completed)
	assert.Len(t, f.publisher.ofType(shared.EventGoalCompleted), 1)
}

func TestUpdateGoal_AlreadyCompleteDoesNotReportAgain(t *testing.T) {
	f := newGoalFixture()
	f.seedGoal(t, "goal-1", 5, 5)

	title := "Renamed"
	result, err := f.handler.Update(context.Background(), UpdateGoalCommand{
		GoalID: "goal-1",
		Patch:  GoalPatch{Title: &title},
	})
	require.NoError(t, err)

	assert.False(t, result.JustComplete)
	assert.Empty(t, f.publisher.ofType(shared.EventGoalCompleted))
}

func TestUpdateGoal_RaisingTargetReopens(t *testing.T) {
	f := newGoalFixture()
	f.seedGoal(t, "goal-1", 5, 5)

	target := 10
	result, err := f.handler.Update(context.Background(), UpdateGoalCommand{
		GoalID: "goal-1",
		Patch:  GoalPatch{Target: &target},
	})
	require.NoError(t, err)

	assert.False(t, result.Goal.Completed)
	assert.Equal(t, 5, result.Goal.Current)
}

func TestUpdateGoalProgress_ClampsAtTarget(t *testing.T) {
	f := newGoalFixture()
	f.seedGoal(t, "goal-1", 3, 2)

	result, err := f.handler.UpdateProgress(context.Background(), UpdateGoalProgressCommand{
		GoalID:    "goal-1",
		Increment: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Goal.Current)
	assert.True(t, result.JustComplete)
}

func TestDeleteGoal(t *testing.T) {
	f := newGoalFixture()
	f.seedGoal(t, "goal-1", 3, 0)
	f.seedGoal(t, "goal-2", 3, 0)

	require.NoError(t, f.handler.Delete(context.Background(), DeleteGoalCommand{GoalID: "goal-1"}))

	goals, err := f.goals.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "goal-2", goals[0].ID)
}

func TestGoalCommands_EmbeddedGoalRejected(t *testing.T) {
	f := newGoalFixture()

	c, err := course.New("course-1", "Algebra", "", "", time.Now())
	require.NoError(t, err)
	c.Goals = []goal.Goal{{ID: "embedded-1", Title: "Course goal", Type: goal.TypeCourse, Target: 4, CourseID: c.ID}}
	require.NoError(t, f.courses.Save(context.Background(), shared.AnonymousUserID, []course.Course{*c}))

	_, err = f.handler.UpdateProgress(context.Background(), UpdateGoalProgressCommand{
		GoalID:    "embedded-1",
		Increment: 1,
	})
	assert.ErrorIs(t, err, shared.ErrCourseScopedGoal)

	err = f.handler.Delete(context.Background(), DeleteGoalCommand{GoalID: "embedded-1"})
	assert.ErrorIs(t, err, shared.ErrCourseScopedGoal)
}

func TestGoalCommands_UnknownGoal(t *testing.T) {
	f := newGoalFixture()

	_, err := f.handler.UpdateProgress(context.Background(), UpdateGoalProgressCommand{
		GoalID:    "missing",
		Increment: 1,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
