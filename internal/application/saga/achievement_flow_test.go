package saga

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/inmem"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

type publisherStub struct {
	events []shared.Event
}

func (p *publisherStub) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

type flowFixture struct {
	courses      *inmem.CourseRepository
	goals        *inmem.GoalRepository
	streaks      *inmem.StreakRepository
	achievements *inmem.AchievementRepository
	publisher    *publisherStub
	flow         *AchievementFlow
}

func newFlowFixture() *flowFixture {
	store := inmem.NewStore()
	f := &flowFixture{
		courses:      inmem.NewCourseRepository(store),
		goals:        inmem.NewGoalRepository(store),
		streaks:      inmem.NewStreakRepository(store),
		achievements: inmem.NewAchievementRepository(store),
		publisher:    &publisherStub{},
	}
	f.flow = NewAchievementFlow(f.courses, f.goals, f.streaks, f.achievements, f.publisher)
	return f
}

func (f *flowFixture) seedLessons(t *testing.T, completed int, completedAt time.Time) {
	t.Helper()
	c, err := course.New("course-1", "Calculus", "", "", completedAt)
	require.NoError(t, err)
	for i := 0; i < completed; i++ {
		c.Lessons = append(c.Lessons, course.Lesson{
			ID:        fmt.Sprintf("lesson-%d", i),
			Title:     "Lesson",
			Type:      course.LessonLab,
			Date:      completedAt,
			Completed: true,
		})
	}
	require.NoError(t, f.courses.Save(context.Background(), shared.AnonymousUserID, []course.Course{*c}))
}

func titles(result *CheckResult) []string {
	out := make([]string, 0, len(result.Unlocked))
	for i := range result.Unlocked {
		out = append(out, result.Unlocked[i].Title)
	}
	return out
}

func TestCheck_FirstLessonUnlocksFirstSteps(t *testing.T) {
	f := newFlowFixture()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, timeutil.Location())
	f.seedLessons(t, 1, now)

	result, err := f.flow.Check(context.Background(), CheckInput{Timestamp: now})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.CompletedLessons)
	assert.Equal(t, []string{"First Steps"}, titles(result))
	assert.Len(t, f.publisher.events, 1)
}

func TestCheck_TenLessonsUnlockBothCompletionBadges(t *testing.T) {
	f := newFlowFixture()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, timeutil.Location())
	// Lessons finished this week also satisfy the weekly rule.
	f.seedLessons(t, 10, now)

	result, err := f.flow.Check(context.Background(), CheckInput{Timestamp: now})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"First Steps", "Dedicated Student", "Week Warrior"},
		titles(result))
}

func TestCheck_Idempotent(t *testing.T) {
	f := newFlowFixture()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, timeutil.Location())
	f.seedLessons(t, 1, now)

	first, err := f.flow.Check(context.Background(), CheckInput{Timestamp: now})
	require.NoError(t, err)
	require.Len(t, first.Unlocked, 1)

	// Re-running against unchanged state unlocks nothing new and
	// publishes nothing new.
	second, err := f.flow.Check(context.Background(), CheckInput{Timestamp: now})
	require.NoError(t, err)
	assert.Empty(t, second.Unlocked)
	assert.Len(t, f.publisher.events, 1)

	stored, err := f.achievements.Load(context.Background(), shared.AnonymousUserID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCheck_StreakBadge(t *testing.T) {
	f := newFlowFixture()
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, timeutil.Location())

	s := streak.New()
	for i := 0; i < 7; i++ {
		require.NoError(t, s.RecordActivity(streak.ActivityStudy, base.AddDate(0, 0, i)))
	}
	require.NoError(t, f.streaks.Save(context.Background(), shared.AnonymousUserID, s))

	result, err := f.flow.Check(context.Background(), CheckInput{Timestamp: base.AddDate(0, 0, 6)})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Stats.CurrentStreak)
	assert.Equal(t, []string{"Study Streak"}, titles(result))
}

func TestCheck_GoalBadgeCountsEmbeddedGoals(t *testing.T) {
	f := newFlowFixture()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, timeutil.Location())

	// The only completed goal lives inside a course. It still counts.
	c, err := course.New("course-1", "History", "", "", now)
	require.NoError(t, err)
	embedded := goal.Goal{ID: "embedded-1", Title: "Chapters", Type: goal.TypeCourse, Target: 3, Current: 3, Completed: true, CourseID: c.ID}
	c.Goals = []goal.Goal{embedded}
	require.NoError(t, f.courses.Save(context.Background(), shared.AnonymousUserID, []course.Course{*c}))

	result, err := f.flow.Check(context.Background(), CheckInput{Timestamp: now})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.CompletedGoals)
	assert.Equal(t, []string{"Goal Achiever"}, titles(result))
}

func TestCheck_WeeklyWindowExcludesOldLessons(t *testing.T) {
	f := newFlowFixture()
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, timeutil.Location())
	// All lessons completed two weeks ago: total counts reach the
	// threshold, the weekly window stays empty.
	f.seedLessons(t, 5, now.AddDate(0, 0, -14))

	result, err := f.flow.Check(context.Background(), CheckInput{Timestamp: now})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Stats.CompletedLessons)
	assert.Equal(t, 0, result.Stats.WeeklyLessons)
	assert.NotContains(t, titles(result), "Week Warrior")
	assert.Contains(t, titles(result), "First Steps")
}

func TestCheck_EmptyStateUnlocksNothing(t *testing.T) {
	f := newFlowFixture()

	result, err := f.flow.Check(context.Background(), CheckInput{})
	require.NoError(t, err)

	assert.Empty(t, result.Unlocked)
	assert.Empty(t, f.publisher.events)
}
