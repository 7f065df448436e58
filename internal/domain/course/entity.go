// ══════════════════════════════════════════════════════════════════
// ДОМЕННАЯ МОДЕЛЬ: КУРСЫ И ИХ СОДЕРЖИМОЕ
// ══════════════════════════════════════════════════════════════════
// Курс - агрегат с вложенными уроками, экзаменами и привязанными
// целями. Уроки несут домашние задания и заметки. Прогресс курса
// всегда выводится из уроков и пересчитывается при каждом изменении.

package course

import (
	"math"
	"strings"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// LessonType - тип урока.
type LessonType string

const (
	LessonLab      LessonType = "lab"
	LessonExercise LessonType = "exercise"
)

// IsValid проверяет корректность типа урока.
func (t LessonType) IsValid() bool {
	return t == LessonLab || t == LessonExercise
}

// Homework - домашнее задание, привязанное к уроку.
type Homework struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"dueDate,omitempty"`
	Completed   bool      `json:"completed"`
	Submitted   bool      `json:"submitted"`
}

// Note - заметка к уроку.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lesson - урок курса.
type Lesson struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Type      LessonType `json:"type"`
	Date      time.Time  `json:"date,omitempty"`
	Completed bool       `json:"completed"`
	Homework  []Homework `json:"homework"`
	Notes     []Note     `json:"notes"`
}

// Exam - экзамен курса. Score хранится только для сданных экзаменов.
type Exam struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date,omitempty"`
	Completed bool      `json:"completed"`
	Score     *int      `json:"score,omitempty"`
}

// Course - агрегат курса.
type Course struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Color       string      `json:"color,omitempty"`
	StartDate   time.Time   `json:"startDate,omitempty"`
	EndDate     time.Time   `json:"endDate,omitempty"`
	Progress    int         `json:"progress"`
	Lessons     []Lesson    `json:"lessons"`
	Exams       []Exam      `json:"exams"`
	Goals       []goal.Goal `json:"goals"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// New создаёт курс без содержимого: уроки, экзамены и цели
// добавляются последующими обновлениями.
func New(id, title, description string, color shared.Color, now time.Time) (*Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.ErrCourseTitleEmpty
	}
	return &Course{
		ID:          id,
		Title:       title,
		Description: description,
		Color:       color.OrDefault().String(),
		Progress:    0,
		Lessons:     []Lesson{},
		Exams:       []Exam{},
		Goals:       []goal.Goal{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CalculateProgress пересчитывает прогресс курса из уроков:
// округлённый процент завершённых. Курс без уроков имеет прогресс 0.
// Экзамены и цели на прогресс не влияют.
func (c *Course) CalculateProgress() {
	if len(c.Lessons) == 0 {
		c.Progress = 0
		return
	}
	completed := c.CompletedLessons()
	c.Progress = int(math.Round(float64(completed) / float64(len(c.Lessons)) * 100))
}

// CompletedLessons возвращает число завершённых уроков.
func (c *Course) CompletedLessons() int {
	n := 0
	for i := range c.Lessons {
		if c.Lessons[i].Completed {
			n++
		}
	}
	return n
}

// CompletedExams возвращает число сданных экзаменов.
func (c *Course) CompletedExams() int {
	n := 0
	for i := range c.Exams {
		if c.Exams[i].Completed {
			n++
		}
	}
	return n
}

// LessonsCompletedSince возвращает число завершённых уроков с датой
// внутри окна [since, now]. Уроки без даты в окно не попадают.
func (c *Course) LessonsCompletedSince(since time.Time) int {
	n := 0
	for i := range c.Lessons {
		l := &c.Lessons[i]
		if l.Completed && !l.Date.IsZero() && !l.Date.Before(since) {
			n++
		}
	}
	return n
}

// Normalize восстанавливает инварианты после загрузки из хранилища:
// nil-срезы становятся пустыми, вложенные цели получают courseId
// курса-владельца, прогресс пересчитывается. Записи старых клиентов
// могли нарушить любой из этих инвариантов.
func (c *Course) Normalize() {
	if c.Lessons == nil {
		c.Lessons = []Lesson{}
	}
	if c.Exams == nil {
		c.Exams = []Exam{}
	}
	if c.Goals == nil {
		c.Goals = []goal.Goal{}
	}
	for i := range c.Lessons {
		l := &c.Lessons[i]
		if l.Homework == nil {
			l.Homework = []Homework{}
		}
		if l.Notes == nil {
			l.Notes = []Note{}
		}
	}
	c.AdoptGoals()
	for i := range c.Goals {
		c.Goals[i].Normalize()
	}
	c.CalculateProgress()
}

// AdoptGoals проставляет вложенным целям courseId курса-владельца.
// Принадлежность определяется позицией в агрегате, а не полем.
func (c *Course) AdoptGoals() {
	for i := range c.Goals {
		c.Goals[i].CourseID = c.ID
		if !c.Goals[i].Type.IsValid() {
			c.Goals[i].Type = goal.TypeCourse
		}
	}
}

// FindLesson возвращает урок по идентификатору.
func (c *Course) FindLesson(lessonID string) (*Lesson, bool) {
	for i := range c.Lessons {
		if c.Lessons[i].ID == lessonID {
			return &c.Lessons[i], true
		}
	}
	return nil, false
}

// Validate проверяет инварианты агрегата.
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return shared.ErrCourseTitleEmpty
	}
	for i := range c.Lessons {
		if c.Lessons[i].Type != "" && !c.Lessons[i].Type.IsValid() {
			return shared.ErrInvalidLessonType
		}
	}
	return nil
}
