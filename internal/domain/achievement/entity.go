// ══════════════════════════════════════════════════════════════════
// ДОМЕННАЯ МОДЕЛЬ: ДОСТИЖЕНИЯ
// ══════════════════════════════════════════════════════════════════
// Достижение - одноразовый значок, открываемый предикатом над
// статистикой пользователя. Однажды открытое достижение не
// закрывается, даже если статистика позже откатилась.

package achievement

import (
	"time"
)

// Category - категория достижения.
type Category string

const (
	CategoryStudy      Category = "study"
	CategoryCompletion Category = "completion"
	CategoryStreak     Category = "streak"
	CategoryGoal       Category = "goal"
)

// Achievement - открытый значок. Неизменяем после создания,
// уникальность в наборе пользователя обеспечивается заголовком.
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Category    Category  `json:"category"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// Stats - снимок статистики, по которому оцениваются правила.
// Правила - чистые предикаты над снимком, истории они не видят.
type Stats struct {
	CompletedLessons int
	WeeklyLessons    int
	CurrentStreak    int
	CompletedGoals   int
}
