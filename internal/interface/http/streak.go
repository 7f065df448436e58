package http

import (
	"net/http"

	"github.com/studyhub/course-tracker-hub/internal/application/command"
	"github.com/studyhub/course-tracker-hub/internal/domain/streak"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.GetStreak.Handle(r.Context(), currentUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type recordActivityRequest struct {
	Type     string `json:"type" validate:"required,oneof=lesson homework exam study"`
	CourseID string `json:"courseId" validate:"omitempty,uuid4"`
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var req recordActivityRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.deps.RecordActivity.Handle(r.Context(), command.RecordActivityCommand{
		UserID:        currentUserID(r),
		Kind:          streak.ActivityKind(req.Type),
		CourseID:      req.CourseID,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type resetStreakRequest struct {
	Confirm bool `json:"confirm"`
}

func (s *Server) handleResetStreak(w http.ResponseWriter, r *http.Request) {
	var req resetStreakRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	reset, err := s.deps.ResetStreak.Handle(r.Context(), command.ResetStreakCommand{
		UserID:  currentUserID(r),
		Confirm: req.Confirm,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reset)
}
