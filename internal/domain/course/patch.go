package course

import (
	"strings"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// Patch - частичное обновление курса. nil-поле означает
// "не трогать", указатель на пустое значение - явную перезапись.
type Patch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Color       *string      `json:"color,omitempty"`
	StartDate   *time.Time   `json:"startDate,omitempty"`
	EndDate     *time.Time   `json:"endDate,omitempty"`
	Lessons     *[]Lesson    `json:"lessons,omitempty"`
	Exams       *[]Exam      `json:"exams,omitempty"`
	Goals       *[]goal.Goal `json:"goals,omitempty"`
}

// TouchesLessons сообщает, заменяет ли патч список уроков.
func (p Patch) TouchesLessons() bool { return p.Lessons != nil }

// TouchesExams сообщает, заменяет ли патч список экзаменов.
func (p Patch) TouchesExams() bool { return p.Exams != nil }

// Apply накладывает патч на курс. При замене списка целей каждая цель
// получает courseId курса-владельца. Прогресс пересчитывается всегда.
func (c *Course) Apply(p Patch, now time.Time) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return shared.ErrCourseTitleEmpty
		}
		c.Title = title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Color != nil {
		color := shared.Color(*p.Color)
		if !color.IsValid() {
			return shared.ErrInvalidColor
		}
		c.Color = color.String()
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.Lessons != nil {
		lessons := *p.Lessons
		if lessons == nil {
			lessons = []Lesson{}
		}
		for i := range lessons {
			if lessons[i].Type != "" && !lessons[i].Type.IsValid() {
				return shared.ErrInvalidLessonType
			}
			if lessons[i].Homework == nil {
				lessons[i].Homework = []Homework{}
			}
			if lessons[i].Notes == nil {
				lessons[i].Notes = []Note{}
			}
		}
		c.Lessons = lessons
	}
	if p.Exams != nil {
		exams := *p.Exams
		if exams == nil {
			exams = []Exam{}
		}
		c.Exams = exams
	}
	if p.Goals != nil {
		goals := *p.Goals
		if goals == nil {
			goals = []goal.Goal{}
		}
		c.Goals = goals
		c.AdoptGoals()
		for i := range c.Goals {
			c.Goals[i].Normalize()
		}
	}
	c.CalculateProgress()
	c.UpdatedAt = now
	return nil
}
