package http

import "net/http"

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT AND DASHBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	views, err := s.deps.GetAchievements.Handle(r.Context(), currentUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.GetDashboard.Handle(r.Context(), currentUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
