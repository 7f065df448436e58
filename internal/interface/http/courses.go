package http

import (
	"net/http"

	"github.com/studyhub/course-tracker-hub/internal/application/command"
	"github.com/studyhub/course-tracker-hub/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.deps.GetCourses.Handle(r.Context(), currentUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.GetCourses.HandleOne(r.Context(), currentUserID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type createCourseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.deps.CreateCourse.Handle(r.Context(), command.CreateCourseCommand{
		UserID:        currentUserID(r),
		Title:         req.Title,
		Description:   req.Description,
		Color:         req.Color,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.Course)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var patch course.Patch
	if err := decodeBody(r, &patch); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.deps.UpdateCourse.Handle(r.Context(), command.UpdateCourseCommand{
		UserID:        currentUserID(r),
		CourseID:      r.PathValue("id"),
		Patch:         patch,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course":               result.Course,
		"newLessonCompletions": result.NewLessonCompletions,
		"newExamCompletions":   result.NewExamCompletions,
		"completedGoalIds":     result.CompletedGoalIDs,
	})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteCourse.Handle(r.Context(), command.DeleteCourseCommand{
		UserID:   currentUserID(r),
		CourseID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
