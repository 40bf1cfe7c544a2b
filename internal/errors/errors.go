// Package errors provides typed application errors with helpful context
// and suggestions for callers.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Query safety errors
	ErrCodeNotASelect        ErrorCode = "NOT_A_SELECT"
	ErrCodeWrongTable        ErrorCode = "WRONG_TABLE"
	ErrCodeForbiddenKeyword  ErrorCode = "FORBIDDEN_KEYWORD"
	ErrCodeUnknownIdentifier ErrorCode = "UNKNOWN_IDENTIFIER"

	// Query generation errors
	ErrCodeEmptyGenerated  ErrorCode = "EMPTY_GENERATED_SQL"
	ErrCodeUpstreamFailure ErrorCode = "UPSTREAM_FAILURE"

	// Execution errors
	ErrCodeDatabaseExecution  ErrorCode = "DATABASE_EXECUTION_FAILED"
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"

	// Record errors
	ErrCodeGameNotFound  ErrorCode = "GAME_NOT_FOUND"
	ErrCodeDuplicateGame ErrorCode = "DUPLICATE_GAME"

	// Input validation errors
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED_FIELD"

	// Authentication errors
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"

	// Cache errors
	ErrCodeCacheRead  ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWrite ErrorCode = "CACHE_WRITE_FAILED"
)

// EnhancedError represents an error with additional context and helpful information
type EnhancedError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Details != "" {
		sb.WriteString(fmt.Sprintf(": %s", e.Details))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(" (cause: %v)", e.Cause))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *EnhancedError) Unwrap() error {
	return e.Cause
}

// New creates a new EnhancedError
func New(code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with enhanced context
func Wrap(err error, code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Cause:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithDetails adds detailed information about the error
func (e *EnhancedError) WithDetails(details string) *EnhancedError {
	e.Details = details
	return e
}

// WithSuggestion adds a suggestion on how to fix the error
func (e *EnhancedError) WithSuggestion(suggestion string) *EnhancedError {
	e.Suggestion = suggestion
	return e
}

// WithMetadata adds additional metadata to the error
func (e *EnhancedError) WithMetadata(key string, value interface{}) *EnhancedError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Retryable reports whether a caller may reasonably retry the operation.
// Only upstream failures are transient; everything else classifies the
// input and will fail the same way on a retry.
func (e *EnhancedError) Retryable() bool {
	if v, ok := e.Metadata["retryable"].(bool); ok {
		return v
	}
	return e.Code == ErrCodeUpstreamFailure
}

// CodeOf extracts the ErrorCode from any error, or empty when the error
// does not carry one.
func CodeOf(err error) ErrorCode {
	if enhanced, ok := err.(*EnhancedError); ok {
		return enhanced.Code
	}
	return ""
}

// Common error constructors with pre-configured messages

// NewNotASelectError reports text that does not begin with SELECT
func NewNotASelectError() *EnhancedError {
	return New(ErrCodeNotASelect, "Only SELECT statements are allowed").
		WithDetails("The query text does not begin with the SELECT keyword").
		WithSuggestion("Queries must be a single read-only SELECT statement.").
		WithMetadata("reason", "not-a-select")
}

// NewWrongTableError reports a query that does not read the games table
func NewWrongTableError(table string) *EnhancedError {
	return New(ErrCodeWrongTable, "Query must read the games table").
		WithDetails(fmt.Sprintf("The query does not contain 'FROM %s'", table)).
		WithSuggestion(fmt.Sprintf("Only the '%s' table can be queried.", table)).
		WithMetadata("reason", "wrong-table")
}

// NewForbiddenKeywordError reports a mutating keyword or a statement separator
func NewForbiddenKeywordError(token string) *EnhancedError {
	return New(ErrCodeForbiddenKeyword, "Query contains a forbidden keyword").
		WithDetails(fmt.Sprintf("The token %q is not permitted anywhere in a query", token)).
		WithSuggestion("Mutating statements and statement chaining are rejected unconditionally.").
		WithMetadata("reason", "forbidden-keyword").
		WithMetadata("token", token)
}

// NewUnknownIdentifierError reports an identifier outside the column allowlist
func NewUnknownIdentifierError(token string) *EnhancedError {
	return New(ErrCodeUnknownIdentifier, "Query references an unknown identifier").
		WithDetails(fmt.Sprintf("%q is not a column of the games table", token)).
		WithSuggestion("Only the documented game columns may appear in a query.").
		WithMetadata("reason", "unknown-identifier: "+token).
		WithMetadata("token", token)
}

// NewEmptyGeneratedError reports an empty translation result
func NewEmptyGeneratedError() *EnhancedError {
	return New(ErrCodeEmptyGenerated, "No SQL could be generated from the question").
		WithDetails("The language model returned an empty response").
		WithSuggestion("Try rephrasing the question to mention game attributes such as players, duration or type.")
}

// NewUpstreamFailureError reports a failed call to the language model
func NewUpstreamFailureError(err error) *EnhancedError {
	return Wrap(err, ErrCodeUpstreamFailure, "Failed to generate SQL from the question").
		WithDetails("The language model service did not produce a translation").
		WithSuggestion("This is typically a temporary issue. Please try again in a moment.").
		WithMetadata("retryable", true)
}

// NewDatabaseExecutionError reports an engine-level failure while running a
// query. The wrapped engine message is descriptive but not stable; callers
// must not parse it.
func NewDatabaseExecutionError(err error) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseExecution, "Invalid SQL query").
		WithDetails("The database engine rejected the statement")
}

// NewDatabaseConnectionError reports a failure to reach the database
func NewDatabaseConnectionError(err error) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseConnection, "Database connection failed").
		WithDetails("Unable to open or reach the games database").
		WithMetadata("retryable", true)
}

// NewGameNotFoundError reports a missing record
func NewGameNotFoundError(name string) *EnhancedError {
	return New(ErrCodeGameNotFound, "Game not found").
		WithDetails(fmt.Sprintf("No game named %q exists", name)).
		WithMetadata("name", name)
}

// NewDuplicateGameError reports a unique-name conflict
func NewDuplicateGameError(name string) *EnhancedError {
	return New(ErrCodeDuplicateGame, "A game with the same name already exists").
		WithMetadata("name", name)
}

// NewInvalidInputError creates an error for invalid input
func NewInvalidInputError(field string, reason string) *EnhancedError {
	return New(ErrCodeInvalidInput, "Invalid input").
		WithDetails(fmt.Sprintf("Field '%s' is invalid: %s", field, reason)).
		WithSuggestion("Please check the API documentation for the expected format and try again.")
}

// NewInvalidCredentialsError creates an error for authentication failures
func NewInvalidCredentialsError() *EnhancedError {
	return New(ErrCodeInvalidCredentials, "Invalid username or password").
		WithSuggestion("Please check your credentials and try again.")
}

// NewNotAuthenticatedError creates an error for unauthenticated requests
func NewNotAuthenticatedError() *EnhancedError {
	return New(ErrCodeNotAuthenticated, "Authentication required").
		WithDetails("Write operations require authentication").
		WithSuggestion("Log in via /api/v1/auth/login or include a valid API key in the 'X-API-Key' header.")
}
