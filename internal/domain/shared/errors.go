// Package shared contains common domain types, errors and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConfirmRequired  = errors.New("explicit confirmation required")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "course", "goal", "streak", "achievement"
	Op      string // Operation that failed, e.g., "Create", "Update"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Course domain errors
var (
	ErrCourseNotFound    = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrCourseTitleEmpty  = NewDomainError("course", "Validate", ErrEmptyValue, "course title is required")
	ErrLessonNotFound    = NewDomainError("course", "FindLesson", ErrNotFound, "lesson not found")
	ErrInvalidLessonType = NewDomainError("course", "Validate", ErrInvalidInput, "lesson type must be lab or exercise")
	ErrInvalidColor      = NewDomainError("course", "Validate", ErrInvalidFormat, "course color must be a hex value")
)

// Goal domain errors
var (
	ErrGoalNotFound   = NewDomainError("goal", "Find", ErrNotFound, "goal not found")
	ErrGoalTitleEmpty = NewDomainError("goal", "Validate", ErrEmptyValue, "goal title is required")
	ErrInvalidTarget  = NewDomainError("goal", "Validate", ErrValueOutOfRange, "goal target must be positive")
	ErrInvalidGoalType = NewDomainError("goal", "Validate", ErrInvalidInput, "invalid goal type")

	// ErrCourseScopedGoal guards the ownership boundary: goals embedded in a
	// course record are mutated only through the course itself.
	ErrCourseScopedGoal = NewDomainError("goal", "Update", ErrInvalidOperation,
		"goal belongs to a course: edit via course only")
)

// Streak domain errors
var (
	ErrStreakResetDenied = NewDomainError("streak", "Reset", ErrConfirmRequired,
		"streak reset is irreversible and must be confirmed")
	ErrUnknownActivity = NewDomainError("streak", "Record", ErrInvalidInput, "unknown activity kind")
)

// Achievement domain errors
var (
	ErrAchievementExists = NewDomainError("achievement", "Unlock", ErrAlreadyExists, "achievement already unlocked")
)

// User / identity errors
var (
	ErrUserNotFound       = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrEmailTaken         = NewDomainError("user", "SignUp", ErrAlreadyExists, "email already registered")
	ErrInvalidCredentials = NewDomainError("user", "SignIn", ErrUnauthorized, "invalid email or password")
	ErrInvalidResetToken  = NewDomainError("user", "ResetPassword", ErrUnauthorized, "invalid or expired reset token")
	ErrIdentityProvider   = NewDomainError("user", "Identity", ErrExternalService, "identity provider request failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrConfirmRequired)
}

// IsInvalidOperation checks if the error is a rejected cross-boundary edit.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsUnauthorized checks if the error is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
