// ══════════════════════════════════════════════════════════════════
// ДОМЕННАЯ МОДЕЛЬ: СЕРИЯ ЕЖЕДНЕВНОЙ АКТИВНОСТИ
// ══════════════════════════════════════════════════════════════════
// Серия считается по календарным дням: несколько активностей за один
// день складываются в один дневной счётчик и серию не удлиняют.
// Пропуск дня разрывает серию, рекорд при этом сохраняется.

package streak

import (
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ActivityKind - тип учебной активности.
type ActivityKind string

const (
	ActivityLesson   ActivityKind = "lesson"
	ActivityHomework ActivityKind = "homework"
	ActivityExam     ActivityKind = "exam"
	ActivityStudy    ActivityKind = "study"
)

// IsValid проверяет корректность типа активности.
func (k ActivityKind) IsValid() bool {
	switch k {
	case ActivityLesson, ActivityHomework, ActivityExam, ActivityStudy:
		return true
	}
	return false
}

// Status - состояние серии на момент чтения.
type Status string

const (
	// StatusNew - активности ещё не было.
	StatusNew Status = "new"
	// StatusActive - последняя активность сегодня или вчера.
	StatusActive Status = "active"
	// StatusBroken - серия прервана пропуском дня.
	StatusBroken Status = "broken"
)

// RetentionDays - окно хранения журнала активности.
const RetentionDays = 30

// Activity - дневная запись журнала. Count растёт при повторных
// активностях в тот же день.
type Activity struct {
	Date  time.Time    `json:"date"`
	Type  ActivityKind `json:"type"`
	Count int          `json:"count"`
}

// Streak - агрегат серии пользователя.
type Streak struct {
	Current          int        `json:"current"`
	Longest          int        `json:"longest"`
	LastActivityDate time.Time  `json:"lastActivityDate,omitempty"`
	Activities       []Activity `json:"activities"`
}

// New возвращает пустую серию.
func New() *Streak {
	return &Streak{Activities: []Activity{}}
}

// RecordActivity регистрирует одно дискретное завершение. Вызывается
// ровно один раз на событие: N одновременных завершений - N вызовов,
// пакетные счётчики не передаются.
//
// Повторная активность в тот же день увеличивает дневной счётчик и
// серию не меняет. Новый день продолжает серию, если вчера была
// активность (или серия только начинается), иначе серия начинается
// заново с 1. Рекорд обновляется, журнал обрезается до 30 дней.
func (s *Streak) RecordActivity(kind ActivityKind, now time.Time) error {
	if !kind.IsValid() {
		return shared.ErrUnknownActivity
	}

	for i := range s.Activities {
		if timeutil.IsSameDay(s.Activities[i].Date, now) {
			s.Activities[i].Count++
			return nil
		}
	}

	switch {
	case s.Current == 0:
		// Первая активность или серия после сброса.
		s.Current = 1
	case !s.LastActivityDate.IsZero() && timeutil.IsConsecutiveDay(s.LastActivityDate, now):
		s.Current++
	case !timeutil.IsSameDay(s.LastActivityDate, now):
		// Пропуск в два и более дня.
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActivityDate = now
	s.Activities = append(s.Activities, Activity{Date: now, Type: kind, Count: 1})
	s.Prune(now)
	return nil
}

// Status возвращает состояние серии. Чистая функция хранимого
// состояния, ничего не мутирует.
func (s *Streak) Status(now time.Time) Status {
	if s.LastActivityDate.IsZero() && len(s.Activities) == 0 {
		return StatusNew
	}
	if timeutil.IsSameDay(s.LastActivityDate, now) ||
		timeutil.IsSameDay(s.LastActivityDate, now.AddDate(0, 0, -1)) {
		return StatusActive
	}
	return StatusBroken
}

// Reset обнуляет текущую серию и журнал. Рекорд сохраняется.
// Действие необратимо, подтверждение запрашивает вызывающий слой.
func (s *Streak) Reset() {
	s.Current = 0
	s.LastActivityDate = time.Time{}
	s.Activities = []Activity{}
}

// Prune удаляет записи старше окна хранения.
func (s *Streak) Prune(now time.Time) {
	cutoff := timeutil.StartOfDay(now).AddDate(0, 0, -RetentionDays)
	kept := s.Activities[:0]
	for _, a := range s.Activities {
		if !a.Date.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	s.Activities = kept
}

// Normalize восстанавливает инварианты после загрузки: nil-журнал
// становится пустым, рекорд не может быть меньше текущей серии.
func (s *Streak) Normalize() {
	if s.Activities == nil {
		s.Activities = []Activity{}
	}
	if s.Current < 0 {
		s.Current = 0
	}
	if s.Longest < s.Current {
		s.Longest = s.Current
	}
}
