package achievement

import (
	"time"

	"github.com/google/uuid"
)

// Rule - предопределённое правило открытия значка.
type Rule struct {
	Title       string
	Description string
	Icon        string
	Category    Category
	Predicate   func(Stats) bool
}

// Rules - фиксированный упорядоченный список правил. Порядок
// детерминирует порядок открытия при одновременном срабатывании.
var Rules = []Rule{
	{
		Title:       "First Steps",
		Description: "Complete your first lesson",
		Icon:        "👶",
		Category:    CategoryCompletion,
		Predicate:   func(s Stats) bool { return s.CompletedLessons >= 1 },
	},
	{
		Title:       "Study Streak",
		Description: "Study for 7 days in a row",
		Icon:        "🔥",
		Category:    CategoryStreak,
		Predicate:   func(s Stats) bool { return s.CurrentStreak >= 7 },
	},
	{
		Title:       "Goal Achiever",
		Description: "Complete your first goal",
		Icon:        "🎯",
		Category:    CategoryGoal,
		Predicate:   func(s Stats) bool { return s.CompletedGoals >= 1 },
	},
	{
		Title:       "Dedicated Student",
		Description: "Complete 10 lessons",
		Icon:        "📚",
		Category:    CategoryCompletion,
		Predicate:   func(s Stats) bool { return s.CompletedLessons >= 10 },
	},
	{
		Title:       "Week Warrior",
		Description: "Complete 5 lessons in one week",
		Icon:        "⚔️",
		Category:    CategoryStudy,
		Predicate:   func(s Stats) bool { return s.WeeklyLessons >= 5 },
	},
}

// Evaluate прогоняет правила по снимку статистики и возвращает
// обновлённый набор вместе со свежеоткрытыми значками. Открытие
// идемпотентно: значок с уже существующим заголовком пропускается,
// сколько бы раз оценка ни запускалась.
func Evaluate(unlocked []Achievement, stats Stats, now time.Time) ([]Achievement, []Achievement) {
	byTitle := make(map[string]struct{}, len(unlocked))
	for i := range unlocked {
		byTitle[unlocked[i].Title] = struct{}{}
	}

	var fresh []Achievement
	for _, rule := range Rules {
		if _, exists := byTitle[rule.Title]; exists {
			continue
		}
		if !rule.Predicate(stats) {
			continue
		}
		a := Achievement{
			ID:          uuid.NewString(),
			Title:       rule.Title,
			Description: rule.Description,
			Icon:        rule.Icon,
			Category:    rule.Category,
			UnlockedAt:  now,
		}
		unlocked = append(unlocked, a)
		fresh = append(fresh, a)
		byTitle[rule.Title] = struct{}{}
	}
	return unlocked, fresh
}
