package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studyhub/course-tracker-hub/internal/domain/course"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GOAL COMMANDS
// Add, update, delete and progress operations for standalone goals.
// Goals embedded in a course are owned by that course: any attempt to edit
// one through this path is rejected with a pointer to the right door.
// ══════════════════════════════════════════════════════════════════════════════

// AddGoalCommand contains the data to create a standalone goal.
type AddGoalCommand struct {
	UserID      shared.UserID
	Title       string
	Description string
	Type        goal.Type
	Target      int
	Deadline    time.Time
}

// GoalPatch is a partial update for a standalone goal.
// nil fields are left untouched.
type GoalPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Type        *goal.Type `json:"type,omitempty"`
	Target      *int       `json:"target,omitempty"`
	Current     *int       `json:"current,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// UpdateGoalCommand applies a partial update to a standalone goal.
type UpdateGoalCommand struct {
	UserID shared.UserID
	GoalID string
	Patch  GoalPatch
}

// DeleteGoalCommand identifies the standalone goal to delete.
type DeleteGoalCommand struct {
	UserID shared.UserID
	GoalID string
}

// UpdateGoalProgressCommand advances a standalone goal by an increment.
type UpdateGoalProgressCommand struct {
	UserID    shared.UserID
	GoalID    string
	Increment int
}

// GoalResult contains the affected goal and whether this command
// completed it.
type GoalResult struct {
	Goal         *goal.Goal
	JustComplete bool
}

// ManageGoalHandler handles all standalone goal commands.
type ManageGoalHandler struct {
	goalRepo   goal.Repository
	courseRepo course.Repository
	publisher  shared.EventPublisher
}

// NewManageGoalHandler creates a new ManageGoalHandler.
func NewManageGoalHandler(goalRepo goal.Repository, courseRepo course.Repository, publisher shared.EventPublisher) *ManageGoalHandler {
	return &ManageGoalHandler{
		goalRepo:   goalRepo,
		courseRepo: courseRepo,
		publisher:  publisher,
	}
}

// Add creates a standalone goal.
func (h *ManageGoalHandler) Add(ctx context.Context, cmd AddGoalCommand) (*GoalResult, error) {
	userID := cmd.UserID.OrAnonymous()

	if cmd.Type == goal.TypeCourse {
		return nil, shared.ErrCourseScopedGoal
	}
	g, err := goal.New(uuid.NewString(), cmd.Title, cmd.Description, cmd.Type, cmd.Target, cmd.Deadline, timeutil.Now())
	if err != nil {
		return nil, err
	}

	goals, err := h.goalRepo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("add_goal: failed to load goals: %w", err)
	}
	goals = append(goals, *g)
	if err := h.goalRepo.Save(ctx, userID, goals); err != nil {
		return nil, fmt.Errorf("add_goal: failed to save goals: %w", err)
	}

	return &GoalResult{Goal: g}, nil
}

// Update applies a partial update. Supplying current or target
// re-derives completed from the clamped progress.
func (h *ManageGoalHandler) Update(ctx context.Context, cmd UpdateGoalCommand) (*GoalResult, error) {
	userID := cmd.UserID.OrAnonymous()

	goals, idx, err := h.findStandalone(ctx, userID, cmd.GoalID)
	if err != nil {
		return nil, err
	}

	g := &goals[idx]
	wasCompleted := g.Completed

	if cmd.Patch.Title != nil {
		g.Title = *cmd.Patch.Title
	}
	if cmd.Patch.Description != nil {
		g.Description = *cmd.Patch.Description
	}
	if cmd.Patch.Type != nil {
		if *cmd.Patch.Type == goal.TypeCourse {
			return nil, shared.ErrCourseScopedGoal
		}
		g.Type = *cmd.Patch.Type
	}
	if cmd.Patch.Target != nil {
		g.Target = *cmd.Patch.Target
	}
	if cmd.Patch.Deadline != nil {
		g.Deadline = *cmd.Patch.Deadline
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	current := g.Current
	if cmd.Patch.Current != nil {
		current = *cmd.Patch.Current
	}
	g.SetProgress(current)

	if err := h.goalRepo.Save(ctx, userID, goals); err != nil {
		return nil, fmt.Errorf("update_goal: failed to save goals: %w", err)
	}

	justComplete := g.Completed && !wasCompleted
	if justComplete {
		_ = h.publisher.Publish(shared.NewGoalCompletedEvent(userID.String(), g.ID, g.Title))
	}
	return &GoalResult{Goal: g, JustComplete: justComplete}, nil
}

// Delete removes a standalone goal.
func (h *ManageGoalHandler) Delete(ctx context.Context, cmd DeleteGoalCommand) error {
	userID := cmd.UserID.OrAnonymous()

	goals, idx, err := h.findStandalone(ctx, userID, cmd.GoalID)
	if err != nil {
		return err
	}

	goals = append(goals[:idx], goals[idx+1:]...)
	if err := h.goalRepo.Save(ctx, userID, goals); err != nil {
		return fmt.Errorf("delete_goal: failed to save goals: %w", err)
	}
	return nil
}

// UpdateProgress advances a goal, clamping to its target. Crossing into
// completion publishes a goal event, which in turn schedules an
// achievement re-evaluation after this write is visible.
func (h *ManageGoalHandler) UpdateProgress(ctx context.Context, cmd UpdateGoalProgressCommand) (*GoalResult, error) {
	userID := cmd.UserID.OrAnonymous()

	goals, idx, err := h.findStandalone(ctx, userID, cmd.GoalID)
	if err != nil {
		return nil, err
	}

	g := &goals[idx]
	justComplete := g.Advance(cmd.Increment)

	if err := h.goalRepo.Save(ctx, userID, goals); err != nil {
		return nil, fmt.Errorf("update_goal_progress: failed to save goals: %w", err)
	}

	if justComplete {
		_ = h.publisher.Publish(shared.NewGoalCompletedEvent(userID.String(), g.ID, g.Title))
	}
	return &GoalResult{Goal: g, JustComplete: justComplete}, nil
}

// findStandalone locates a goal in the standalone list. An ID that is
// only found embedded in a course is a cross-boundary edit and is
// rejected rather than silently ignored.
func (h *ManageGoalHandler) findStandalone(ctx context.Context, userID shared.UserID, goalID string) ([]goal.Goal, int, error) {
	if goalID == "" {
		return nil, 0, shared.ErrInvalidID
	}

	goals, err := h.goalRepo.Load(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("goal: failed to load goals: %w", err)
	}
	for i := range goals {
		goals[i].Normalize()
		if goals[i].ID == goalID {
			return goals, i, nil
		}
	}

	courses, err := h.courseRepo.Load(ctx, userID)
	if err == nil {
		for i := range courses {
			for j := range courses[i].Goals {
				if courses[i].Goals[j].ID == goalID {
					return nil, 0, shared.ErrCourseScopedGoal
				}
			}
		}
	}
	return nil, 0, shared.ErrGoalNotFound
}
