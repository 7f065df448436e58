package goal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

func TestNew_Validation(t *testing.T) {
	now := time.Now()

	_, err := New("g1", "  ", "", TypeDaily, 5, time.Time{}, now)
	assert.ErrorIs(t, err, shared.ErrGoalTitleEmpty)

	_, err = New("g1", "Read", "", Type("yearly"), 5, time.Time{}, now)
	assert.ErrorIs(t, err, shared.ErrInvalidGoalType)

	_, err = New("g1", "Read", "", TypeDaily, 0, time.Time{}, now)
	assert.ErrorIs(t, err, shared.ErrInvalidTarget)

	g, err := New("g1", "Read 5 chapters", "", TypeWeekly, 5, time.Time{}, now)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Current)
	assert.False(t, g.Completed)
}

func TestSetProgress_Clamps(t *testing.T) {
	g := &Goal{ID: "g1", Title: "Solve tasks", Type: TypeDaily, Target: 10}

	g.SetProgress(-3)
	assert.Equal(t, 0, g.Current)
	assert.False(t, g.Completed)

	g.SetProgress(25)
	assert.Equal(t, 10, g.Current, "current never exceeds target")
	assert.True(t, g.Completed)

	// Откат прогресса снимает completed: флаг всегда выводится заново.
	g.SetProgress(4)
	assert.Equal(t, 4, g.Current)
	assert.False(t, g.Completed)
}

func TestSetProgress_ReportsCrossing(t *testing.T) {
	g := &Goal{ID: "g1", Title: "Solve tasks", Type: TypeDaily, Target: 3, Current: 2}

	assert.True(t, g.SetProgress(3), "crossing into completion is reported once")
	assert.False(t, g.SetProgress(3), "already-completed goal does not report again")
}

func TestAdvance(t *testing.T) {
	g := &Goal{ID: "g1", Title: "Solve tasks", Type: TypeWeekly, Target: 2, Current: 1}

	assert.False(t, g.Advance(0))
	assert.False(t, g.Advance(-5))
	assert.Equal(t, 1, g.Current)

	assert.True(t, g.Advance(1))
	assert.Equal(t, 2, g.Current)
	assert.True(t, g.Completed)
}

func TestIsActive(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	g := &Goal{Title: "Read", Type: TypeDaily, Target: 3}
	assert.True(t, g.IsActive(now))

	g.Completed = true
	assert.False(t, g.IsActive(now))

	expired := &Goal{Title: "Read", Type: TypeDaily, Target: 3, Deadline: now.AddDate(0, 0, -1)}
	assert.False(t, expired.IsActive(now))
}

func TestNormalize_RepairsLoadedGoal(t *testing.T) {
	// Запись старого клиента: тип потерян, прогресс за пределами
	// диапазона, completed рассинхронизирован.
	g := &Goal{ID: "g1", Title: "Pass course", CourseID: "c1", Target: 4, Current: 9, Completed: false}
	g.Normalize()

	assert.Equal(t, TypeCourse, g.Type)
	assert.Equal(t, 4, g.Current)
	assert.True(t, g.Completed)
}

func TestIsCourseScoped(t *testing.T) {
	standalone := &Goal{Title: "Read", Type: TypeDaily, Target: 1}
	assert.False(t, standalone.IsCourseScoped())

	scoped := &Goal{Title: "Pass", Type: TypeCourse, Target: 1}
	assert.True(t, scoped.IsCourseScoped())

	backRef := &Goal{Title: "Pass", Type: TypeWeekly, Target: 1, CourseID: "c1"}
	assert.True(t, backRef.IsCourseScoped())
}
