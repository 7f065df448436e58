package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/studyhub/course-tracker-hub/internal/domain/achievement"
	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// BLOB STORE
// One JSONB document per (user, domain). The whole document is replaced
// on every save: the last write is the source of truth, exactly like the
// client-local storage this layout descends from.
// ══════════════════════════════════════════════════════════════════════════════

// BlobStore reads and writes raw per-domain documents.
type BlobStore struct {
	conn *Connection
}

// NewBlobStore creates a BlobStore over the connection.
func NewBlobStore(conn *Connection) *BlobStore {
	return &BlobStore{conn: conn}
}

// Get unmarshals the document for (user, domain) into out. Returns
// false when no document exists. A document that fails to unmarshal is
// reported as corrupt; callers decide whether to tolerate it.
func (s *BlobStore) Get(ctx context.Context, userID shared.UserID, domain shared.StoreDomain, out interface{}) (bool, error) {
	var payload []byte
	err := s.conn.QueryRow(ctx,
		`SELECT payload FROM user_blobs WHERE user_id = $1 AND domain = $2`,
		userID.OrAnonymous().String(), string(domain),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres: failed to load %s blob: %w", domain, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return true, fmt.Errorf("postgres: corrupt %s blob: %w", domain, err)
	}
	return true, nil
}

// Put replaces the document for (user, domain).
func (s *BlobStore) Put(ctx context.Context, userID shared.UserID, domain shared.StoreDomain, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal %s blob: %w", domain, err)
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO user_blobs (user_id, domain, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, domain)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		userID.OrAnonymous().String(), string(domain), payload,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save %s blob: %w", domain, err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY ADAPTERS
// Corrupt or legacy documents never fail a read: the repository falls
// back to an empty value and lets domain normalization repair the rest.
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository is a PostgreSQL-backed course.Repository.
type CourseRepository struct {
	store *BlobStore
}

// NewCourseRepository creates a CourseRepository.
func NewCourseRepository(store *BlobStore) *CourseRepository {
	return &CourseRepository{store: store}
}

func (r *CourseRepository) Load(ctx context.Context, userID shared.UserID) ([]course.Course, error) {
	var courses []course.Course
	found, err := r.store.Get(ctx, userID, shared.DomainCourses, &courses)
	if err != nil {
		if found {
			// Corrupt document: treat as empty rather than fail.
			return []course.Course{}, nil
		}
		return nil, err
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return courses, nil
}

func (r *CourseRepository) Save(ctx context.Context, userID shared.UserID, courses []course.Course) error {
	if courses == nil {
		courses = []course.Course{}
	}
	return r.store.Put(ctx, userID, shared.DomainCourses, courses)
}

// GoalRepository is a PostgreSQL-backed goal.Repository.
type GoalRepository struct {
	store *BlobStore
}

// NewGoalRepository creates a GoalRepository.
func NewGoalRepository(store *BlobStore) *GoalRepository {
	return &GoalRepository{store: store}
}

func (r *GoalRepository) Load(ctx context.Context, userID shared.UserID) ([]goal.Goal, error) {
	var goals []goal.Goal
	found, err := r.store.Get(ctx, userID, shared.DomainGoals, &goals)
	if err != nil {
		if found {
			return []goal.Goal{}, nil
		}
		return nil, err
	}
	if goals == nil {
		goals = []goal.Goal{}
	}
	return goals, nil
}

func (r *GoalRepository) Save(ctx context.Context, userID shared.UserID, goals []goal.Goal) error {
	if goals == nil {
		goals = []goal.Goal{}
	}
	return r.store.Put(ctx, userID, shared.DomainGoals, goals)
}

// AchievementRepository is a PostgreSQL-backed achievement.Repository.
type AchievementRepository struct {
	store *BlobStore
}

// NewAchievementRepository creates an AchievementRepository.
func NewAchievementRepository(store *BlobStore) *AchievementRepository {
	return &AchievementRepository{store: store}
}

func (r *AchievementRepository) Load(ctx context.Context, userID shared.UserID) ([]achievement.Achievement, error) {
	var unlocked []achievement.Achievement
	found, err := r.store.Get(ctx, userID, shared.DomainAchievements, &unlocked)
	if err != nil {
		if found {
			return []achievement.Achievement{}, nil
		}
		return nil, err
	}
	if unlocked == nil {
		unlocked = []achievement.Achievement{}
	}
	return unlocked, nil
}

func (r *AchievementRepository) Save(ctx context.Context, userID shared.UserID, unlocked []achievement.Achievement) error {
	if unlocked == nil {
		unlocked = []achievement.Achievement{}
	}
	return r.store.Put(ctx, userID, shared.DomainAchievements, unlocked)
}

// StreakRepository is a PostgreSQL-backed streak.Repository.
type StreakRepository struct {
	store *BlobStore
}

// NewStreakRepository creates a StreakRepository.
func NewStreakRepository(store *BlobStore) *StreakRepository {
	return &StreakRepository{store: store}
}

func (r *StreakRepository) Load(ctx context.Context, userID shared.UserID) (*streak.Streak, error) {
	s := streak.New()
	found, err := r.store.Get(ctx, userID, shared.DomainStreak, s)
	if err != nil {
		if found {
			return streak.New(), nil
		}
		return nil, err
	}
	s.Normalize()
	return s, nil
}

func (r *StreakRepository) Save(ctx context.Context, userID shared.UserID, s *streak.Streak) error {
	return r.store.Put(ctx, userID, shared.DomainStreak, s)
}

// PruneStale deletes activity log entries older than the retention
// window for every stored streak, and is run by the scheduler.
func (r *StreakRepository) PruneStale(ctx context.Context) (int, error) {
	rows, err := r.store.conn.Query(ctx,
		`SELECT user_id FROM user_blobs WHERE domain = $1`, string(shared.DomainStreak))
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to list streaks: %w", err)
	}
	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		userIDs = append(userIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	pruned := 0
	for _, id := range userIDs {
		uid := shared.UserID(id)
		s, err := r.Load(ctx, uid)
		if err != nil {
			continue
		}
		before := len(s.Activities)
		s.Prune(timeutil.Now())
		if len(s.Activities) == before {
			continue
		}
		if err := r.Save(ctx, uid, s); err != nil {
			continue
		}
		pruned++
	}
	return pruned, nil
}
