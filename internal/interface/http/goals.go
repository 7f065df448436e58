package http

import (
	"net/http"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/application/command"
	"github.com/studyhub/course-tracker-hub/internal/domain/goal"
)

// ══════════════════════════════════════════════════════════════════════════════
// GOAL HANDLERS
// Standalone goals only. Course-embedded goals are read through the
// merged list but edited through their course.
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.GetGoals.Handle(r.Context(), currentUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

type addGoalRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Type        string     `json:"type" validate:"required,oneof=daily weekly monthly"`
	Target      int        `json:"target" validate:"required,gt=0"`
	Deadline    *time.Time `json:"deadline"`
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req addGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	cmd := command.AddGoalCommand{
		UserID:      currentUserID(r),
		Title:       req.Title,
		Description: req.Description,
		Type:        goal.Type(req.Type),
		Target:      req.Target,
	}
	if req.Deadline != nil {
		cmd.Deadline = *req.Deadline
	}

	result, err := s.deps.ManageGoal.Add(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.Goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var patch command.GoalPatch
	if err := decodeBody(r, &patch); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.deps.ManageGoal.Update(r.Context(), command.UpdateGoalCommand{
		UserID: currentUserID(r),
		GoalID: r.PathValue("id"),
		Patch:  patch,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"goal":         result.Goal,
		"justComplete": result.JustComplete,
	})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	err := s.deps.ManageGoal.Delete(r.Context(), command.DeleteGoalCommand{
		UserID: currentUserID(r),
		GoalID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type goalProgressRequest struct {
	Increment int `json:"increment" validate:"required,gt=0"`
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req goalProgressRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.deps.ManageGoal.UpdateProgress(r.Context(), command.UpdateGoalProgressCommand{
		UserID:    currentUserID(r),
		GoalID:    r.PathValue("id"),
		Increment: req.Increment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"goal":         result.Goal,
		"justComplete": result.JustComplete,
	})
}
