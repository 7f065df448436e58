// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACTIVITY COMMAND
// Records one discrete study completion (lesson, homework, exam, free study)
// and advances the daily streak. Callers fire it once per completion event:
// three lessons finished at once means three commands, never a batch count.
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivityCommand contains the data to record one study activity.
type RecordActivityCommand struct {
	// UserID identifies the streak owner. Empty falls back to the
	// anonymous pre-login identity.
	UserID shared.UserID

	// Kind is the type of study activity.
	Kind streak.ActivityKind

	// CourseID optionally links the activity to a course (for events).
	CourseID string

	// Timestamp is when the activity occurred (defaults to now if zero).
	Timestamp time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordActivityCommand) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("record_activity: unknown activity kind: %s", c.Kind)
	}
	return nil
}

// RecordActivityResult contains the result of recording an activity.
type RecordActivityResult struct {
	// Current is the streak length after this activity.
	Current int

	// Longest is the best streak ever recorded.
	Longest int

	// Status is the streak state after this activity.
	Status streak.Status

	// Extended indicates the streak grew by a day (false when the
	// activity was absorbed into today's bucket).
	Extended bool

	// RecordedAt is when the activity was recorded.
	RecordedAt time.Time
}

// RecordActivityHandler handles the RecordActivityCommand.
type RecordActivityHandler struct {
	streakRepo streak.Repository
	publisher  shared.EventPublisher
}

// NewRecordActivityHandler creates a new RecordActivityHandler.
func NewRecordActivityHandler(streakRepo streak.Repository, publisher shared.EventPublisher) *RecordActivityHandler {
	return &RecordActivityHandler{
		streakRepo: streakRepo,
		publisher:  publisher,
	}
}

// Handle executes the record activity command. The activity event is
// published only after the streak write succeeds, so downstream
// evaluation always reads state that includes this activity.
func (h *RecordActivityHandler) Handle(ctx context.Context, cmd RecordActivityCommand) (*RecordActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	userID := cmd.UserID.OrAnonymous()
	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = timeutil.Now()
	}

	s, err := h.streakRepo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("record_activity: failed to load streak: %w", err)
	}
	s.Normalize()

	before := s.Current
	if err := s.RecordActivity(cmd.Kind, timestamp); err != nil {
		return nil, err
	}

	if err := h.streakRepo.Save(ctx, userID, s); err != nil {
		return nil, fmt.Errorf("record_activity: failed to save streak: %w", err)
	}

	event := shared.NewActivityRecordedEvent(userID.String(), string(cmd.Kind), cmd.CourseID, s.Current)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	// Publishing is best effort: the write already landed.
	_ = h.publisher.Publish(event)

	return &RecordActivityResult{
		Current:    s.Current,
		Longest:    s.Longest,
		Status:     s.Status(timestamp),
		Extended:   s.Current > before,
		RecordedAt: timestamp,
	}, nil
}
