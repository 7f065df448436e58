package command

import (
	"context"
	"fmt"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESET STREAK COMMAND
// Irreversibly zeroes the current streak and the activity log. The longest
// streak survives as a record. The caller must carry explicit confirmation
// from the user; without it the command refuses to run.
// ══════════════════════════════════════════════════════════════════════════════

// ResetStreakCommand resets the user's streak.
type ResetStreakCommand struct {
	UserID shared.UserID

	// Confirm must be true: the action destroys the activity log.
	Confirm bool
}

// ResetStreakHandler handles the ResetStreakCommand.
type ResetStreakHandler struct {
	streakRepo streak.Repository
	publisher  shared.EventPublisher
}

// NewResetStreakHandler creates a new ResetStreakHandler.
func NewResetStreakHandler(streakRepo streak.Repository, publisher shared.EventPublisher) *ResetStreakHandler {
	return &ResetStreakHandler{streakRepo: streakRepo, publisher: publisher}
}

// Handle executes the reset streak command.
func (h *ResetStreakHandler) Handle(ctx context.Context, cmd ResetStreakCommand) (*streak.Streak, error) {
	if !cmd.Confirm {
		return nil, shared.ErrConfirmRequired
	}
	userID := cmd.UserID.OrAnonymous()

	s, err := h.streakRepo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reset_streak: failed to load streak: %w", err)
	}
	s.Normalize()

	previous := s.Current
	s.Reset()

	if err := h.streakRepo.Save(ctx, userID, s); err != nil {
		return nil, fmt.Errorf("reset_streak: failed to save streak: %w", err)
	}

	_ = h.publisher.Publish(shared.NewStreakResetEvent(userID.String(), previous, s.Longest))
	return s, nil
}
