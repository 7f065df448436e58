package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(list []Achievement) []string {
	out := make([]string, 0, len(list))
	for i := range list {
		out = append(out, list[i].Title)
	}
	return out
}

func TestEvaluate_UnlocksMatchingRules(t *testing.T) {
	now := time.Now()

	unlocked, fresh := Evaluate(nil, Stats{CompletedLessons: 1}, now)
	require.Len(t, fresh, 1)
	assert.Equal(t, "First Steps", fresh[0].Title)
	assert.Equal(t, CategoryCompletion, fresh[0].Category)
	assert.Equal(t, "👶", fresh[0].Icon)
	assert.Len(t, unlocked, 1)
}

func TestEvaluate_TenLessonsUnlocksBothCompletionBadges(t *testing.T) {
	unlocked, fresh := Evaluate(nil, Stats{CompletedLessons: 10}, time.Now())

	assert.ElementsMatch(t, []string{"First Steps", "Dedicated Student"}, titles(fresh))
	assert.Len(t, unlocked, 2)
}

func TestEvaluate_Idempotent(t *testing.T) {
	now := time.Now()
	stats := Stats{CompletedLessons: 10, CurrentStreak: 7, CompletedGoals: 1, WeeklyLessons: 5}

	unlocked, fresh := Evaluate(nil, stats, now)
	require.Len(t, fresh, len(Rules), "all predefined badges fire")

	again, fresh2 := Evaluate(unlocked, stats, now.Add(time.Minute))
	assert.Empty(t, fresh2, "second evaluation with identical stats unlocks nothing")
	assert.Len(t, again, len(Rules))
}

func TestEvaluate_UnlockIsMonotonic(t *testing.T) {
	now := time.Now()

	unlocked, _ := Evaluate(nil, Stats{CurrentStreak: 7}, now)
	require.Equal(t, []string{"Study Streak"}, titles(unlocked))

	// Статистика откатилась, открытый значок остаётся.
	after, fresh := Evaluate(unlocked, Stats{CurrentStreak: 0}, now.Add(time.Hour))
	assert.Empty(t, fresh)
	assert.Equal(t, []string{"Study Streak"}, titles(after))
}

func TestEvaluate_Ordering(t *testing.T) {
	stats := Stats{CompletedLessons: 10, CurrentStreak: 7}
	_, fresh := Evaluate(nil, stats, time.Now())

	// Порядок открытия повторяет порядок списка правил.
	assert.Equal(t, []string{"First Steps", "Study Streak", "Dedicated Student"}, titles(fresh))
}
