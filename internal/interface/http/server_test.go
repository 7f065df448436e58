package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/config"
	"github.com/studyhub/course-tracker-hub/internal/application/command"
	"github.com/studyhub/course-tracker-hub/internal/application/query"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/inmem"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/service"
	"github.com/studyhub/course-tracker-hub/pkg/logger"
)

type okChecker struct{}

func (okChecker) Ping(context.Context) error { return nil }

// newTestServer wires a full server over in-memory storage with the
// local identity provider.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := inmem.NewStore()
	courses := inmem.NewCourseRepository(store)
	goals := inmem.NewGoalRepository(store)
	streaks := inmem.NewStreakRepository(store)
	achievements := inmem.NewAchievementRepository(store)

	publisher := nopPublisher{}
	recordActivity := command.NewRecordActivityHandler(streaks, publisher)

	tokens := service.NewTokenService("test-secret", time.Hour)
	local := service.NewLocalIdentityProvider(
		inmem.NewAccountRepository(),
		inmem.NewResetTokenRepository(time.Hour),
		tokens,
		service.NewConsoleMailer(nil),
		"http://localhost:8080",
		nil,
	)

	coursesQuery := query.NewGetCoursesHandler(courses)
	goalsQuery := query.NewGetGoalsHandler(goals, courses)
	streakQuery := query.NewGetStreakHandler(streaks)
	achievementsQuery := query.NewGetAchievementsHandler(achievements)

	deps := Dependencies{
		CreateCourse:   command.NewCreateCourseHandler(courses, publisher),
		UpdateCourse:   command.NewUpdateCourseHandler(courses, goals, recordActivity, publisher),
		DeleteCourse:   command.NewDeleteCourseHandler(courses, publisher),
		ManageGoal:     command.NewManageGoalHandler(goals, courses, publisher),
		RecordActivity: recordActivity,
		ResetStreak:    command.NewResetStreakHandler(streaks, publisher),

		GetCourses:      coursesQuery,
		GetGoals:        goalsQuery,
		GetStreak:       streakQuery,
		GetAchievements: achievementsQuery,
		GetDashboard:    query.NewGetDashboardHandler(coursesQuery, goalsQuery, streakQuery, achievementsQuery),

		Identity:       local,
		Verifier:       local,
		ResetCompleter: local,

		Features:      config.LoadFeatureFlags(),
		Logger:        logger.Default(),
		HealthChecker: okChecker{},
	}

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	return NewServer(cfg, deps)
}

type nopPublisher struct{}

func (nopPublisher) Publish(shared.Event) error { return nil }

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, JSONResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var envelope JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestAnonymousCourseFlow(t *testing.T) {
	srv := newTestServer(t)

	// Everything works without a token: data lands under the
	// anonymous identity.
	rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/courses", map[string]interface{}{
		"title": "Go Basics",
		"color": "#ff6b6b",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, envelope.Success)

	rec, envelope = doJSON(t, srv, http.MethodGet, "/api/v1/courses", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var courses []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "Go Basics", courses[0]["title"])
}

func TestCreateCourse_ValidationError(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/courses", map[string]interface{}{
		"description": "missing title",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "validation_error", envelope.Error.Code)
}

func TestGetCourse_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/courses/missing", nil, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "not_found", envelope.Error.Code)
}

func TestStreakReset_RequiresConfirm(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/streak/reset", map[string]interface{}{
		"confirm": false,
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
}

func TestRecordActivity_UnknownTypeRejected(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/v1/streak/activity", map[string]interface{}{
		"type": "nap",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoals_CourseTypeRejectedAtTheEdge(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/v1/goals", map[string]interface{}{
		"title":  "Sneaky",
		"type":   "course",
		"target": 1,
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthFlow_SignUpSignInMe(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/signup", map[string]interface{}{
		"email":    "student@example.com",
		"password": "correct-horse",
		"username": "student",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, "signup failed: %v", envelope.Error)

	rec, envelope = doJSON(t, srv, http.MethodPost, "/api/v1/auth/signin", map[string]interface{}{
		"email":    "student@example.com",
		"password": "correct-horse",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var session user.Session
	require.NoError(t, json.Unmarshal(raw, &session))
	require.NotEmpty(t, session.Token)

	rec, envelope = doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", nil, session.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err = json.Marshal(envelope.Data)
	require.NoError(t, err)
	var me user.User
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, "student@example.com", me.Email)
}

func TestAuth_ProviderErrorPassedVerbatim(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/signin", map[string]interface{}{
		"email":    "nobody@example.com",
		"password": "whatever-pass",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "invalid email or password")
}

func TestMe_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", nil, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "unauthorized", envelope.Error.Code)
}

func TestInvalidTokenFallsBackToAnonymous(t *testing.T) {
	srv := newTestServer(t)

	// A garbage token must not break read endpoints: the request
	// simply proceeds anonymously.
	rec, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/streak", nil, "garbage-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboard_AggregatesAllDomains(t *testing.T) {
	srv := newTestServer(t)

	_, _ = doJSON(t, srv, http.MethodPost, "/api/v1/courses", map[string]interface{}{"title": "Algebra"}, "")
	_, _ = doJSON(t, srv, http.MethodPost, "/api/v1/goals", map[string]interface{}{
		"title":  "Read",
		"type":   "weekly",
		"target": 3,
	}, "")

	rec, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/dashboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var dashboard query.DashboardView
	require.NoError(t, json.Unmarshal(raw, &dashboard))
	assert.Equal(t, 1, dashboard.TotalCourses)
	assert.Equal(t, 1, dashboard.ActiveGoals)
	assert.Equal(t, 0, dashboard.CurrentStreak)
}
