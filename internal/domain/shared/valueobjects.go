package shared

import (
	"regexp"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// UserID представляет идентификатор пользователя.
// Всё состояние в хранилище ключуется этим значением.
type UserID string

// AnonymousUserID - фиксированный ключ для состояния до входа в систему.
const AnonymousUserID UserID = "anonymous"

// IsValid проверяет, что UserID непустой.
func (u UserID) IsValid() bool {
	return strings.TrimSpace(string(u)) != ""
}

// IsAnonymous возвращает true для анонимного состояния.
func (u UserID) IsAnonymous() bool {
	return u == AnonymousUserID
}

// OrAnonymous возвращает сам ID либо анонимный ключ, если ID пуст.
func (u UserID) OrAnonymous() UserID {
	if !u.IsValid() {
		return AnonymousUserID
	}
	return u
}

// String возвращает строковое представление.
func (u UserID) String() string {
	return string(u)
}

// StoreDomain - раздел персистентного хранилища.
// На каждую пару (пользователь, раздел) приходится один JSON-блоб.
type StoreDomain string

const (
	// DomainCourses - курсы со всеми вложенными уроками, экзаменами и заметками.
	DomainCourses StoreDomain = "courses"
	// DomainGoals - самостоятельные цели.
	DomainGoals StoreDomain = "goals"
	// DomainAchievements - разблокированные достижения.
	DomainAchievements StoreDomain = "achievements"
	// DomainStreak - состояние серии и журнал активности.
	DomainStreak StoreDomain = "streak"
)

// IsValid проверяет, что раздел известен хранилищу.
func (d StoreDomain) IsValid() bool {
	switch d {
	case DomainCourses, DomainGoals, DomainAchievements, DomainStreak:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление раздела.
func (d StoreDomain) String() string {
	return string(d)
}

// Color - цвет курса в hex-формате (#RGB или #RRGGBB).
type Color string

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DefaultColor используется, когда пользователь не выбрал цвет.
const DefaultColor Color = "#3B82F6"

// IsValid проверяет hex-формат цвета.
func (c Color) IsValid() bool {
	return colorPattern.MatchString(string(c))
}

// OrDefault возвращает цвет либо цвет по умолчанию, если значение невалидно.
func (c Color) OrDefault() Color {
	if !c.IsValid() {
		return DefaultColor
	}
	return c
}

// String возвращает строковое представление цвета.
func (c Color) String() string {
	return string(c)
}
