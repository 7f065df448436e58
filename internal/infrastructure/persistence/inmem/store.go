// Package inmem provides in-memory repository implementations.
// Used in tests and as a storage backend for single-user local runs.
package inmem

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/studyhub/course-tracker-hub/internal/domain/achievement"
	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
)

// Store keeps one JSON blob per (user, domain) pair, mirroring the
// persistent layout. Blobs are deep-copied through JSON on both reads
// and writes so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

func blobKey(userID shared.UserID, domain shared.StoreDomain) string {
	return fmt.Sprintf("%s:%s", userID.OrAnonymous(), domain)
}

// Get unmarshals the blob for (user, domain) into out. Returns false
// when no blob exists.
func (s *Store) Get(userID shared.UserID, domain shared.StoreDomain, out interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.blobs[blobKey(userID, domain)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("inmem: corrupt blob %s: %w", domain, err)
	}
	return true, nil
}

// Put replaces the blob for (user, domain).
func (s *Store) Put(userID shared.UserID, domain shared.StoreDomain, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("inmem: marshal blob %s: %w", domain, err)
	}
	s.mu.Lock()
	s.blobs[blobKey(userID, domain)] = raw
	s.mu.Unlock()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Repository adapters
// ─────────────────────────────────────────────────────────────────────────────

// CourseRepository is an in-memory course.Repository.
type CourseRepository struct{ store *Store }

// NewCourseRepository creates a CourseRepository over the store.
func NewCourseRepository(store *Store) *CourseRepository {
	return &CourseRepository{store: store}
}

func (r *CourseRepository) Load(_ context.Context, userID shared.UserID) ([]course.Course, error) {
	var courses []course.Course
	if _, err := r.store.Get(userID, shared.DomainCourses, &courses); err != nil {
		// Повреждённый блоб не роняет чтение: начинаем с пустого списка.
		return []course.Course{}, nil
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return courses, nil
}

func (r *CourseRepository) Save(_ context.Context, userID shared.UserID, courses []course.Course) error {
	if courses == nil {
		courses = []course.Course{}
	}
	return r.store.Put(userID, shared.DomainCourses, courses)
}

// GoalRepository is an in-memory goal.Repository.
type GoalRepository struct{ store *Store }

// NewGoalRepository creates a GoalRepository over the store.
func NewGoalRepository(store *Store) *GoalRepository {
	return &GoalRepository{store: store}
}

func (r *GoalRepository) Load(_ context.Context, userID shared.UserID) ([]goal.Goal, error) {
	var goals []goal.Goal
	if _, err := r.store.Get(userID, shared.DomainGoals, &goals); err != nil {
		return []goal.Goal{}, nil
	}
	if goals == nil {
		goals = []goal.Goal{}
	}
	return goals, nil
}

func (r *GoalRepository) Save(_ context.Context, userID shared.UserID, goals []goal.Goal) error {
	if goals == nil {
		goals = []goal.Goal{}
	}
	return r.store.Put(userID, shared.DomainGoals, goals)
}

// AchievementRepository is an in-memory achievement.Repository.
type AchievementRepository struct{ store *Store }

// NewAchievementRepository creates an AchievementRepository over the store.
func NewAchievementRepository(store *Store) *AchievementRepository {
	return &AchievementRepository{store: store}
}

func (r *AchievementRepository) Load(_ context.Context, userID shared.UserID) ([]achievement.Achievement, error) {
	var unlocked []achievement.Achievement
	if _, err := r.store.Get(userID, shared.DomainAchievements, &unlocked); err != nil {
		return []achievement.Achievement{}, nil
	}
	if unlocked == nil {
		unlocked = []achievement.Achievement{}
	}
	return unlocked, nil
}

func (r *AchievementRepository) Save(_ context.Context, userID shared.UserID, unlocked []achievement.Achievement) error {
	if unlocked == nil {
		unlocked = []achievement.Achievement{}
	}
	return r.store.Put(userID, shared.DomainAchievements, unlocked)
}

// StreakRepository is an in-memory streak.Repository.
type StreakRepository struct{ store *Store }

// NewStreakRepository creates a StreakRepository over the store.
func NewStreakRepository(store *Store) *StreakRepository {
	return &StreakRepository{store: store}
}

func (r *StreakRepository) Load(_ context.Context, userID shared.UserID) (*streak.Streak, error) {
	s := streak.New()
	if _, err := r.store.Get(userID, shared.DomainStreak, s); err != nil {
		return streak.New(), nil
	}
	s.Normalize()
	return s, nil
}

func (r *StreakRepository) Save(_ context.Context, userID shared.UserID, s *streak.Streak) error {
	return r.store.Put(userID, shared.DomainStreak, s)
}
