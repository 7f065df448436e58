package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyhub/course-tracker-hub/internal/domain/achievement"
	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE-ASIDE REPOSITORY DECORATORS
// Each decorator wraps the durable repository: reads hit Redis first,
// writes go to the store and then refresh the cache. A cache failure is
// logged and ignored - the durable store stays the source of truth.
// ══════════════════════════════════════════════════════════════════════════════

func blobCacheKey(userID shared.UserID, domain shared.StoreDomain) string {
	return fmt.Sprintf("%s%s:%s", PrefixBlob, userID.OrAnonymous(), domain)
}

// CachedCourseRepository is a cache-aside decorator for course.Repository.
type CachedCourseRepository struct {
	inner  course.Repository
	cache  *Cache
	logger *slog.Logger
}

// NewCachedCourseRepository wraps a course repository with caching.
func NewCachedCourseRepository(inner course.Repository, cache *Cache, logger *slog.Logger) *CachedCourseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedCourseRepository{inner: inner, cache: cache, logger: logger}
}

func (r *CachedCourseRepository) Load(ctx context.Context, userID shared.UserID) ([]course.Course, error) {
	key := blobCacheKey(userID, shared.DomainCourses)

	var cached []course.Course
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	courses, err := r.inner.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, courses, TTLBlobCache); err != nil {
		r.logger.Debug("course cache refresh failed", "user_id", userID, "error", err)
	}
	return courses, nil
}

func (r *CachedCourseRepository) Save(ctx context.Context, userID shared.UserID, courses []course.Course) error {
	if err := r.inner.Save(ctx, userID, courses); err != nil {
		return err
	}
	key := blobCacheKey(userID, shared.DomainCourses)
	if err := r.cache.Set(ctx, key, courses, TTLBlobCache); err != nil {
		r.logger.Debug("course cache write failed", "user_id", userID, "error", err)
		_ = r.cache.Delete(ctx, key)
	}
	return nil
}

// CachedGoalRepository is a cache-aside decorator for goal.Repository.
type CachedGoalRepository struct {
	inner  goal.Repository
	cache  *Cache
	logger *slog.Logger
}

// NewCachedGoalRepository wraps a goal repository with caching.
func NewCachedGoalRepository(inner goal.Repository, cache *Cache, logger *slog.Logger) *CachedGoalRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedGoalRepository{inner: inner, cache: cache, logger: logger}
}

func (r *CachedGoalRepository) Load(ctx context.Context, userID shared.UserID) ([]goal.Goal, error) {
	key := blobCacheKey(userID, shared.DomainGoals)

	var cached []goal.Goal
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	goals, err := r.inner.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, goals, TTLBlobCache); err != nil {
		r.logger.Debug("goal cache refresh failed", "user_id", userID, "error", err)
	}
	return goals, nil
}

func (r *CachedGoalRepository) Save(ctx context.Context, userID shared.UserID, goals []goal.Goal) error {
	if err := r.inner.Save(ctx, userID, goals); err != nil {
		return err
	}
	key := blobCacheKey(userID, shared.DomainGoals)
	if err := r.cache.Set(ctx, key, goals, TTLBlobCache); err != nil {
		r.logger.Debug("goal cache write failed", "user_id", userID, "error", err)
		_ = r.cache.Delete(ctx, key)
	}
	return nil
}

// CachedAchievementRepository is a cache-aside decorator for
// achievement.Repository.
type CachedAchievementRepository struct {
	inner  achievement.Repository
	cache  *Cache
	logger *slog.Logger
}

// NewCachedAchievementRepository wraps an achievement repository with caching.
func NewCachedAchievementRepository(inner achievement.Repository, cache *Cache, logger *slog.Logger) *CachedAchievementRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedAchievementRepository{inner: inner, cache: cache, logger: logger}
}

func (r *CachedAchievementRepository) Load(ctx context.Context, userID shared.UserID) ([]achievement.Achievement, error) {
	key := blobCacheKey(userID, shared.DomainAchievements)

	var cached []achievement.Achievement
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	unlocked, err := r.inner.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, unlocked, TTLBlobCache); err != nil {
		r.logger.Debug("achievement cache refresh failed", "user_id", userID, "error", err)
	}
	return unlocked, nil
}

func (r *CachedAchievementRepository) Save(ctx context.Context, userID shared.UserID, unlocked []achievement.Achievement) error {
	if err := r.inner.Save(ctx, userID, unlocked); err != nil {
		return err
	}
	key := blobCacheKey(userID, shared.DomainAchievements)
	if err := r.cache.Set(ctx, key, unlocked, TTLBlobCache); err != nil {
		r.logger.Debug("achievement cache write failed", "user_id", userID, "error", err)
		_ = r.cache.Delete(ctx, key)
	}
	return nil
}

// CachedStreakRepository is a cache-aside decorator for streak.Repository.
type CachedStreakRepository struct {
	inner  streak.Repository
	cache  *Cache
	logger *slog.Logger
}

// NewCachedStreakRepository wraps a streak repository with caching.
func NewCachedStreakRepository(inner streak.Repository, cache *Cache, logger *slog.Logger) *CachedStreakRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStreakRepository{inner: inner, cache: cache, logger: logger}
}

func (r *CachedStreakRepository) Load(ctx context.Context, userID shared.UserID) (*streak.Streak, error) {
	key := blobCacheKey(userID, shared.DomainStreak)

	cached := streak.New()
	if err := r.cache.Get(ctx, key, cached); err == nil {
		cached.Normalize()
		return cached, nil
	}

	s, err := r.inner.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, s, TTLBlobCache); err != nil {
		r.logger.Debug("streak cache refresh failed", "user_id", userID, "error", err)
	}
	return s, nil
}

func (r *CachedStreakRepository) Save(ctx context.Context, userID shared.UserID, s *streak.Streak) error {
	if err := r.inner.Save(ctx, userID, s); err != nil {
		return err
	}
	key := blobCacheKey(userID, shared.DomainStreak)
	if err := r.cache.Set(ctx, key, s, TTLBlobCache); err != nil {
		r.logger.Debug("streak cache write failed", "user_id", userID, "error", err)
		_ = r.cache.Delete(ctx, key)
	}
	return nil
}
