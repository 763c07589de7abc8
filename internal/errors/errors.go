// Package errors provides centralized error definitions and error handling utilities
// for tourguide. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - TourError: errors raised by the registry or a sequencer for one tour
//   - HookError: a step's before/after hook failed and aborted a transition
//   - DefinitionError: a tour definition file could not be loaded
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//
// # Usage
//
//	err := errors.NewHookError(errors.PhaseBefore, 2, cause).WithTourID("welcome")
//
//	if errors.Is(err, errors.ErrHookFailed) { ... }
//
//	var hookErr *errors.HookError
//	if errors.As(err, &hookErr) { ... }
//
// # Error Classification
//
// Errors carry a Severity and a user-facing flag. Tour errors are integration
// errors: none of them are shown to end users by default.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Tour-related sentinel errors
var (
	// ErrSequencerStopped indicates that the sequencer was unmounted.
	ErrSequencerStopped = New("sequencer stopped")
	// ErrPredicateFailed indicates that the eligibility predicate returned an error.
	ErrPredicateFailed = New("eligibility predicate failed")
	// ErrHookFailed indicates that a step hook returned an error.
	ErrHookFailed = New("step hook failed")
)

// Definition-related sentinel errors
var (
	// ErrTourNotFound indicates that no tour with the given id is defined.
	ErrTourNotFound = New("tour not found")
	// ErrDuplicateTour indicates that two definitions share a tour id.
	ErrDuplicateTour = New("duplicate tour id")
	// ErrUnknownAction indicates that a hook references an unregistered action.
	ErrUnknownAction = New("unknown hook action")
	// ErrInvalidDefinition indicates that a definition file is malformed.
	ErrInvalidDefinition = New("invalid tour definition")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// TourguideError is the base interface for all tourguide errors.
type TourguideError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// formatWithContext renders "<kind> [k=v, ...]: message: cause".
func formatWithContext(kind string, parts []string, message string, cause error) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// TourError represents errors raised while coordinating or sequencing a tour.
//
// Example:
//
//	err := errors.NewTourError("subscribe failed", errors.ErrPredicateFailed).WithTourID("welcome")
//	fmt.Println(err) // "tour error [tour=welcome]: subscribe failed: eligibility predicate failed"
type TourError struct {
	baseError
	TourID  string
	MountID string
	Step    int
	hasStep bool
}

// NewTourError creates a new TourError.
func NewTourError(message string, cause error) *TourError {
	return &TourError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithTourID adds a tour ID to the error context.
func (e *TourError) WithTourID(id string) *TourError {
	e.TourID = id
	return e
}

// WithMountID adds the mounted instance ID to the error context.
func (e *TourError) WithMountID(id string) *TourError {
	e.MountID = id
	return e
}

// WithStep adds a step index to the error context.
func (e *TourError) WithStep(step int) *TourError {
	e.Step = step
	e.hasStep = true
	return e
}

// Error returns the formatted error message.
func (e *TourError) Error() string {
	var parts []string
	if e.TourID != "" {
		parts = append(parts, fmt.Sprintf("tour=%s", e.TourID))
	}
	if e.MountID != "" {
		parts = append(parts, fmt.Sprintf("mount=%s", e.MountID))
	}
	if e.hasStep {
		parts = append(parts, fmt.Sprintf("step=%d", e.Step))
	}
	return formatWithContext("tour error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *TourError) Is(target error) bool {
	if _, ok := target.(*TourError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// HookPhase names which side of a transition a hook belongs to.
type HookPhase string

const (
	// PhaseBefore is the hook run before a step becomes active.
	PhaseBefore HookPhase = "before"
	// PhaseAfter is the hook run after a step stops being active.
	PhaseAfter HookPhase = "after"
)

// HookError represents a failed OnBefore/OnAfter hook. It always matches
// ErrHookFailed in addition to its cause.
type HookError struct {
	baseError
	TourID string
	Phase  HookPhase
	Step   int
}

// NewHookError creates a new HookError.
func NewHookError(phase HookPhase, step int, cause error) *HookError {
	return &HookError{
		baseError: baseError{
			message:  fmt.Sprintf("%s hook of step %d failed", phase, step),
			cause:    cause,
			severity: SeverityWarning,
		},
		Phase: phase,
		Step:  step,
	}
}

// WithTourID adds a tour ID to the error context.
func (e *HookError) WithTourID(id string) *HookError {
	e.TourID = id
	return e
}

// Error returns the formatted error message.
func (e *HookError) Error() string {
	var parts []string
	if e.TourID != "" {
		parts = append(parts, fmt.Sprintf("tour=%s", e.TourID))
	}
	return formatWithContext("hook error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *HookError) Is(target error) bool {
	if target == ErrHookFailed {
		return true
	}
	if _, ok := target.(*HookError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DefinitionError represents errors loading or resolving tour definition files.
type DefinitionError struct {
	baseError
	File   string
	TourID string
}

// NewDefinitionError creates a new DefinitionError.
func NewDefinitionError(message string, cause error) *DefinitionError {
	return &DefinitionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithFile adds the definition file path to the error context.
func (e *DefinitionError) WithFile(path string) *DefinitionError {
	e.File = path
	return e
}

// WithTourID adds a tour ID to the error context.
func (e *DefinitionError) WithTourID(id string) *DefinitionError {
	e.TourID = id
	return e
}

// Error returns the formatted error message.
func (e *DefinitionError) Error() string {
	var parts []string
	if e.File != "" {
		parts = append(parts, fmt.Sprintf("file=%s", e.File))
	}
	if e.TourID != "" {
		parts = append(parts, fmt.Sprintf("tour=%s", e.TourID))
	}
	return formatWithContext("definition error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *DefinitionError) Is(target error) bool {
	if _, ok := target.(*DefinitionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError indicates that a resource could not be found.
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s not found", resourceType),
			severity:   SeverityError,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause sets the underlying cause.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.ResourceID != "" {
		return fmt.Sprintf("%s not found: %s", e.ResourceType, e.ResourceID)
	}
	return e.message
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError indicates invalid input or state.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			cause:      ErrInvalidInput,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithField sets the field that failed validation.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue sets the offending value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation error")
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(" [field=%s]", e.Field))
	}
	sb.WriteString(": ")
	sb.WriteString(e.message)
	if e.Value != nil {
		sb.WriteString(fmt.Sprintf(" (got: %v)", e.Value))
	}
	return sb.String()
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing reports whether err (or any error it wraps) is marked safe to
// show to end users.
func IsUserFacing(err error) bool {
	var te TourguideError
	if As(err, &te) {
		return te.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity of err, or SeverityError for errors that
// don't carry one.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var te TourguideError
	if As(err, &te) {
		return te.Severity()
	}
	return SeverityError
}

// Wrap adds message context to err. It returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted message context to err. It returns nil when err is nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
