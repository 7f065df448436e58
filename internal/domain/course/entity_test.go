package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

func testCourse(t *testing.T, lessons ...Lesson) *Course {
	t.Helper()
	c, err := New("c1", "Go Basics", "", shared.Color(""), time.Now())
	require.NoError(t, err)
	c.Lessons = lessons
	c.CalculateProgress()
	return c
}

func TestNew(t *testing.T) {
	now := time.Now()

	_, err := New("c1", "   ", "", shared.Color(""), now)
	assert.ErrorIs(t, err, shared.ErrCourseTitleEmpty)

	c, err := New("c1", "Go Basics", "intro", shared.Color(""), now)
	require.NoError(t, err)
	assert.Equal(t, shared.DefaultColor.String(), c.Color)
	assert.NotNil(t, c.Lessons)
	assert.NotNil(t, c.Exams)
	assert.NotNil(t, c.Goals)
	assert.Equal(t, 0, c.Progress)
}

func TestCalculateProgress(t *testing.T) {
	t.Run("half completed", func(t *testing.T) {
		c := testCourse(t,
			Lesson{ID: "l1", Completed: true},
			Lesson{ID: "l2", Completed: true},
			Lesson{ID: "l3"},
			Lesson{ID: "l4"},
		)
		assert.Equal(t, 50, c.Progress)
	})

	t.Run("three of four", func(t *testing.T) {
		c := testCourse(t,
			Lesson{ID: "l1", Completed: true},
			Lesson{ID: "l2", Completed: true},
			Lesson{ID: "l3", Completed: true},
			Lesson{ID: "l4"},
		)
		assert.Equal(t, 75, c.Progress)
	})

	t.Run("rounds to nearest", func(t *testing.T) {
		c := testCourse(t,
			Lesson{ID: "l1", Completed: true},
			Lesson{ID: "l2"},
			Lesson{ID: "l3"},
		)
		assert.Equal(t, 33, c.Progress)

		c.Lessons[1].Completed = true
		c.CalculateProgress()
		assert.Equal(t, 67, c.Progress)
	})

	t.Run("no lessons means zero", func(t *testing.T) {
		c := testCourse(t)
		assert.Equal(t, 0, c.Progress)
	})
}

func TestDiffCompletions_CountsOnlyIncreases(t *testing.T) {
	before := testCourse(t,
		Lesson{ID: "l1", Completed: true},
		Lesson{ID: "l2"},
	)
	before.Exams = []Exam{{ID: "e1"}}

	after := testCourse(t,
		Lesson{ID: "l1", Completed: true},
		Lesson{ID: "l2", Completed: true},
	)
	after.Exams = []Exam{{ID: "e1", Completed: true}}

	d := DiffCompletions(before, after)
	assert.Equal(t, 1, d.Lessons)
	assert.Equal(t, 1, d.Exams)
	assert.True(t, d.HasNew())

	// Снятие отметки не даёт отрицательного прироста.
	reverse := DiffCompletions(after, before)
	assert.Equal(t, 0, reverse.Lessons)
	assert.Equal(t, 0, reverse.Exams)
	assert.False(t, reverse.HasNew())
}

func TestNormalize_RepairsLoadedCourse(t *testing.T) {
	// Запись старого клиента: nil-срезы и потерянные courseId.
	c := &Course{
		ID:    "c1",
		Title: "Go Basics",
		Lessons: []Lesson{
			{ID: "l1", Completed: true},
		},
		Goals: []goal.Goal{
			{ID: "g1", Title: "Pass", Target: 1, CourseID: "stale"},
		},
	}
	c.Normalize()

	assert.NotNil(t, c.Exams)
	assert.NotNil(t, c.Lessons[0].Homework)
	assert.NotNil(t, c.Lessons[0].Notes)
	assert.Equal(t, "c1", c.Goals[0].CourseID)
	assert.Equal(t, goal.TypeCourse, c.Goals[0].Type)
	assert.Equal(t, 100, c.Progress)
}

func TestApply(t *testing.T) {
	now := time.Now()
	c := testCourse(t, Lesson{ID: "l1"})

	t.Run("replaces lessons and recomputes progress", func(t *testing.T) {
		lessons := []Lesson{
			{ID: "l1", Completed: true},
			{ID: "l2"},
		}
		require.NoError(t, c.Apply(Patch{Lessons: &lessons}, now))
		assert.Equal(t, 50, c.Progress)
		assert.NotNil(t, c.Lessons[0].Homework)
	})

	t.Run("adopts replaced goals", func(t *testing.T) {
		goals := []goal.Goal{{ID: "g1", Title: "Pass", Target: 1}}
		require.NoError(t, c.Apply(Patch{Goals: &goals}, now))
		assert.Equal(t, "c1", c.Goals[0].CourseID)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		empty := "  "
		err := c.Apply(Patch{Title: &empty}, now)
		assert.ErrorIs(t, err, shared.ErrCourseTitleEmpty)
	})

	t.Run("rejects bad lesson type", func(t *testing.T) {
		lessons := []Lesson{{ID: "l9", Type: LessonType("seminar")}}
		err := c.Apply(Patch{Lessons: &lessons}, now)
		assert.ErrorIs(t, err, shared.ErrInvalidLessonType)
	})

	t.Run("rejects bad color", func(t *testing.T) {
		bad := "blue"
		err := c.Apply(Patch{Color: &bad}, now)
		assert.ErrorIs(t, err, shared.ErrInvalidColor)
	})
}

func TestLessonsCompletedSince(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	c := testCourse(t,
		Lesson{ID: "l1", Completed: true, Date: now.AddDate(0, 0, -2)},
		Lesson{ID: "l2", Completed: true, Date: now.AddDate(0, 0, -10)},
		Lesson{ID: "l3", Completed: false, Date: now.AddDate(0, 0, -1)},
		Lesson{ID: "l4", Completed: true},
	)

	assert.Equal(t, 1, c.LessonsCompletedSince(now.AddDate(0, 0, -6)))
}
