package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/studyhub/course-tracker-hub/config"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"
	"github.com/studyhub/course-tracker-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTH MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// withIdentity resolves the caller from the Authorization header when
// present. Requests without a valid token proceed under the anonymous
// identity, so the tracker is fully usable before sign-in.
func (s *Server) withIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" && s.deps.Verifier != nil {
			u, err := s.deps.Verifier.VerifyToken(r.Context(), token)
			if err == nil && u != nil {
				r = r.WithContext(contextWithUser(r.Context(), u))
			} else if err != nil {
				s.logger.Debug("token rejected", logger.Err(err))
			}
		}
		next(w, r)
	}
}

// withUser requires a signed-in caller. Anonymous requests get 401.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return s.withIdentity(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func contextWithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, u)
}

func userFromContext(ctx context.Context) *user.User {
	if u, ok := ctx.Value(contextKeyUser).(*user.User); ok {
		return u
	}
	return nil
}

// currentUserID returns the caller's ID, falling back to the anonymous
// pre-login key.
func currentUserID(r *http.Request) shared.UserID {
	if u := userFromContext(r.Context()); u != nil {
		return u.ID
	}
	return shared.AnonymousUserID
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Username string `json:"username" validate:"required,min=2,max=64"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if s.deps.Features != nil && !s.deps.Features.IsEnabled(config.FeatureSignup) {
		writeJSONError(w, http.StatusForbidden, "signup_disabled", "registration is currently disabled")
		return
	}

	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	session, err := s.deps.Identity.SignUp(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	session, err := s.deps.Identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type recoverRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	if s.deps.Features != nil && !s.deps.Features.IsEnabled(config.FeaturePasswordReset) {
		writeJSONError(w, http.StatusForbidden, "reset_disabled", "password reset is currently disabled")
		return
	}

	var req recoverRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.deps.Identity.SendPasswordReset(r.Context(), req.Email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reset email sent"})
}

type resetCompleteRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) handleResetComplete(w http.ResponseWriter, r *http.Request) {
	if s.deps.ResetCompleter == nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "password reset completion is handled by the identity provider")
		return
	}

	var req resetCompleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.deps.ResetCompleter.CompleteReset(r.Context(), req.Token, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

type updatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	u := userFromContext(r.Context())
	if err := s.deps.Identity.UpdatePassword(r.Context(), u.ID, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

type updateProfileRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	u := userFromContext(r.Context())
	updated, err := s.deps.Identity.UpdateProfile(r.Context(), u.ID, req.Username)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}
