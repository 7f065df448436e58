// Package saga contains complex business processes that orchestrate
// multiple domain operations in a coordinated manner.
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/achievement"
	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT FLOW SAGA
// Flow: Snapshot Stats → Evaluate Rules → Persist New Badges → Publish Events
//
// The saga runs off the event bus, strictly after the triggering write has
// landed: every statistic is re-read from the repositories, never carried
// in from the trigger. Rapid triggers cause redundant evaluations, which
// is fine - unlocking is idempotent by badge title, so duplicates are
// suppressed at the rules level rather than by debouncing the triggers.
// ══════════════════════════════════════════════════════════════════════════════

// CheckInput identifies whose achievements to re-evaluate.
type CheckInput struct {
	// UserID - the user to check.
	UserID shared.UserID

	// Trigger - what caused this check (event type, for logs).
	Trigger string

	// Timestamp - when the check was requested (defaults to now).
	Timestamp time.Time
}

// CheckResult contains the outcome of one evaluation.
type CheckResult struct {
	// Stats is the snapshot the rules were evaluated against.
	Stats achievement.Stats

	// Unlocked lists badges newly unlocked by this evaluation.
	Unlocked []achievement.Achievement

	// Evaluated is the number of rules evaluated.
	Evaluated int
}

// AchievementFlow evaluates achievement rules against current store state.
type AchievementFlow struct {
	courseRepo      course.Repository
	goalRepo        goal.Repository
	streakRepo      streak.Repository
	achievementRepo achievement.Repository
	publisher       shared.EventPublisher
}

// NewAchievementFlow creates a new AchievementFlow.
func NewAchievementFlow(
	courseRepo course.Repository,
	goalRepo goal.Repository,
	streakRepo streak.Repository,
	achievementRepo achievement.Repository,
	publisher shared.EventPublisher,
) *AchievementFlow {
	return &AchievementFlow{
		courseRepo:      courseRepo,
		goalRepo:        goalRepo,
		streakRepo:      streakRepo,
		achievementRepo: achievementRepo,
		publisher:       publisher,
	}
}

// Check runs one full evaluation cycle for the user.
func (f *AchievementFlow) Check(ctx context.Context, input CheckInput) (*CheckResult, error) {
	userID := input.UserID.OrAnonymous()
	now := input.Timestamp
	if now.IsZero() {
		now = timeutil.Now()
	}

	stats, err := f.snapshotStats(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	unlocked, err := f.achievementRepo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("achievement_flow: failed to load achievements: %w", err)
	}

	all, fresh := achievement.Evaluate(unlocked, stats, now)
	result := &CheckResult{
		Stats:     stats,
		Unlocked:  fresh,
		Evaluated: len(achievement.Rules),
	}
	if len(fresh) == 0 {
		return result, nil
	}

	if err := f.achievementRepo.Save(ctx, userID, all); err != nil {
		return nil, fmt.Errorf("achievement_flow: failed to save achievements: %w", err)
	}

	for i := range fresh {
		_ = f.publisher.Publish(shared.NewAchievementUnlockedEvent(userID.String(), fresh[i].Title, string(fresh[i].Category)))
	}
	return result, nil
}

// snapshotStats recomputes the four aggregate statistics the rules need.
func (f *AchievementFlow) snapshotStats(ctx context.Context, userID shared.UserID, now time.Time) (achievement.Stats, error) {
	var stats achievement.Stats

	courses, err := f.courseRepo.Load(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("achievement_flow: failed to load courses: %w", err)
	}
	weekAgo := timeutil.StartOfDay(now).AddDate(0, 0, -6)
	for i := range courses {
		courses[i].Normalize()
		stats.CompletedLessons += courses[i].CompletedLessons()
		stats.WeeklyLessons += courses[i].LessonsCompletedSince(weekAgo)
	}

	goals, err := f.goalRepo.Load(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("achievement_flow: failed to load goals: %w", err)
	}
	for i := range goals {
		goals[i].Normalize()
		if goals[i].Completed {
			stats.CompletedGoals++
		}
	}
	// Встроенные в курсы цели тоже считаются достигнутыми целями.
	for i := range courses {
		for j := range courses[i].Goals {
			if courses[i].Goals[j].Completed {
				stats.CompletedGoals++
			}
		}
	}

	s, err := f.streakRepo.Load(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("achievement_flow: failed to load streak: %w", err)
	}
	s.Normalize()
	stats.CurrentStreak = s.Current

	return stats, nil
}
