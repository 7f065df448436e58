// ══════════════════════════════════════════════════════════════════
// ДОМЕННАЯ МОДЕЛЬ: УЧЕБНЫЕ ЦЕЛИ
// ══════════════════════════════════════════════════════════════════
// Цель фиксирует измеримый прогресс (current из target) за период.
// Цели бывают самостоятельными (daily/weekly/monthly) и привязанными
// к курсу (course). Привязанные цели редактируются только через курс.

package goal

import (
	"strings"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// Type определяет период или природу цели.
type Type string

const (
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
	TypeCourse  Type = "course"
)

// IsValid проверяет корректность типа цели.
func (t Type) IsValid() bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeCourse:
		return true
	}
	return false
}

// IsStandalone сообщает, живёт ли цель отдельно от курсов.
func (t Type) IsStandalone() bool {
	return t.IsValid() && t != TypeCourse
}

// Goal - учебная цель с измеримым прогрессом.
// Completed всегда выводится из current >= target, никогда не хранится
// независимо.
type Goal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        Type      `json:"type"`
	Target      int       `json:"target"`
	Current     int       `json:"current"`
	Completed   bool      `json:"completed"`
	CourseID    string    `json:"courseId,omitempty"`
	Deadline    time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// New создаёт самостоятельную цель с нулевым прогрессом.
func New(id, title, description string, typ Type, target int, deadline time.Time, now time.Time) (*Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.ErrGoalTitleEmpty
	}
	if !typ.IsValid() {
		return nil, shared.ErrInvalidGoalType
	}
	if target <= 0 {
		return nil, shared.ErrInvalidTarget
	}
	return &Goal{
		ID:          id,
		Title:       title,
		Description: description,
		Type:        typ,
		Target:      target,
		Current:     0,
		Completed:   false,
		Deadline:    deadline,
		CreatedAt:   now,
	}, nil
}

// NewCourseGoal создаёт цель, привязанную к курсу.
func NewCourseGoal(id, title, description, courseID string, target int, now time.Time) (*Goal, error) {
	g, err := New(id, title, description, TypeCourse, target, time.Time{}, now)
	if err != nil {
		return nil, err
	}
	g.CourseID = courseID
	return g, nil
}

// IsCourseScoped сообщает, принадлежит ли цель курсу.
func (g *Goal) IsCourseScoped() bool {
	return g.CourseID != "" || g.Type == TypeCourse
}

// IsActive сообщает, открыта ли цель (не завершена и не просрочена).
func (g *Goal) IsActive(now time.Time) bool {
	if g.Completed {
		return false
	}
	if !g.Deadline.IsZero() && now.After(g.Deadline) {
		return false
	}
	return true
}

// SetProgress устанавливает прогресс, зажимая его в диапазон [0, target].
// Возвращает true, если цель стала завершённой этим вызовом.
func (g *Goal) SetProgress(current int) bool {
	if current < 0 {
		current = 0
	}
	if current > g.Target {
		current = g.Target
	}
	wasCompleted := g.Completed
	g.Current = current
	g.Completed = g.Target > 0 && g.Current >= g.Target
	return g.Completed && !wasCompleted
}

// Advance увеличивает прогресс на delta (не меньше нуля).
// Возвращает true, если цель стала завершённой этим вызовом.
func (g *Goal) Advance(delta int) bool {
	if delta <= 0 {
		return false
	}
	return g.SetProgress(g.Current + delta)
}

// Normalize приводит загруженную цель к инвариантам модели: выводит
// completed из прогресса и восстанавливает тип для привязанных целей.
// Данные из хранилища могли быть записаны старыми версиями клиента.
func (g *Goal) Normalize() {
	if g.CourseID != "" && !g.Type.IsValid() {
		g.Type = TypeCourse
	}
	if g.Target > 0 {
		if g.Current < 0 {
			g.Current = 0
		}
		if g.Current > g.Target {
			g.Current = g.Target
		}
		g.Completed = g.Current >= g.Target
	}
}

// Validate проверяет инварианты цели.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return shared.ErrGoalTitleEmpty
	}
	if !g.Type.IsValid() {
		return shared.ErrInvalidGoalType
	}
	if g.Target <= 0 {
		return shared.ErrInvalidTarget
	}
	return nil
}
