package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across CashnGo.
const (
	// Identity and context
	FieldRequestID   = "request_id"
	FieldClientID    = "client_id"
	FieldGigID       = "gig_id"
	FieldAppID       = "application_id"
	FieldApplicantID = "applicant_id"
	FieldCourseID    = "course_id"
	FieldQuizID      = "quiz_id"

	// Components
	FieldComponent = "component"
	FieldBackend   = "backend"

	// Storage
	FieldKey      = "key"
	FieldRevision = "revision"
	FieldSize     = "size"

	// Operations
	FieldOperation = "operation"
	FieldMethod    = "method"
	FieldPath      = "path"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and state
	FieldCount  = "count"
	FieldStatus = "status"
	FieldState  = "state"
	FieldScore  = "score"

	// Network
	FieldAddress = "address"
	FieldURL     = "url"
)

type contextKey string

const (
	requestIDKey contextKey = "logger_request_id"
	componentKey contextKey = "logger_component"
)

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, FieldRequestID, requestID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Board struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func New(s *storage.Store) *Board {
//	    return &Board{logger: logger.ComponentLogger("board")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
