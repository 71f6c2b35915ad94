// Package errors defines the application error taxonomy and the gin
// middleware that maps it onto HTTP responses. Everything below the API
// layer returns plain errors; ToAppError is the single place where domain
// and storage errors pick up categories and status codes.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"

	"github.com/Techtees/civicpro/internal/analytics"
	"github.com/Techtees/civicpro/internal/storage"
)

// ErrorCategory defines the type of error for proper handling.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryDuplicate  ErrorCategory = "duplicate_rating"
	CategoryComparison ErrorCategory = "comparison"
	CategoryAuth       ErrorCategory = "auth"
	CategoryStore      ErrorCategory = "store"
	CategoryInternal   ErrorCategory = "internal"
)

// AppError wraps an errbuilder error with the category and HTTP status the
// API layer needs to serialize it.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory     `json:"category"`
	HTTPStatus int               `json:"http_status"`
	Timestamp  time.Time         `json:"timestamp"`
	Fields     map[string]string `json:"-"`
}

// MarshalJSON flattens the wrapped builder into a stable wire shape so that
// clients are not coupled to the builder's internals.
func (e *AppError) MarshalJSON() ([]byte, error) {
	payload := map[string]any{
		"message":   e.ErrBuilder.Msg,
		"category":  e.Category,
		"code":      e.ErrBuilder.ErrCode(),
		"timestamp": e.Timestamp,
	}
	if len(e.Fields) > 0 {
		payload["errors"] = e.Fields
	}
	return json.Marshal(payload)
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Category, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from errbuilder with additional context.
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewValidationError creates a 400 validation error.
func NewValidationError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewValidationErrorWithMap creates a 400 validation error carrying
// field-level detail.
func NewValidationErrorWithMap(fields map[string]string) *AppError {
	errMap := errbuilder.ErrorMap{}
	for field, message := range fields {
		errMap.Set(field, errors.New(message))
	}
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("Invalid request data").
		WithDetails(errbuilder.NewErrDetails(errMap))
	appErr := NewAppError(builder, CategoryValidation, http.StatusBadRequest)
	appErr.Fields = fields
	return appErr
}

// NewNotFoundError creates a 404 error for a missing entity.
func NewNotFoundError(entity string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("%s not found", entity))
	return NewAppError(builder, CategoryNotFound, http.StatusNotFound)
}

// NewDuplicateRatingError creates the 400 error returned when a (user,
// politician) pair already holds a rating.
func NewDuplicateRatingError() *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeAlreadyExists).
		WithMsg("You have already submitted a rating for this politician")
	return NewAppError(builder, CategoryDuplicate, http.StatusBadRequest)
}

// NewComparisonError creates the 400 error returned when fewer than two
// valid politicians resolve for a comparison.
func NewComparisonError() *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("At least two valid politician IDs are required for comparison")
	return NewAppError(builder, CategoryComparison, http.StatusBadRequest)
}

// NewUnauthorizedError creates a 401 error.
func NewUnauthorizedError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnauthenticated).
		WithMsg(message)
	return NewAppError(builder, CategoryAuth, http.StatusUnauthorized)
}

// NewForbiddenError creates a 403 error.
func NewForbiddenError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodePermissionDenied).
		WithMsg(message)
	return NewAppError(builder, CategoryAuth, http.StatusForbidden)
}

// NewStoreError creates a 500 error for an entity-store failure. The store
// is not retried here; retries, if any, belong to the storage client.
func NewStoreError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryStore, http.StatusInternalServerError)
}

// NewInternalError creates a generic 500 error.
func NewInternalError(cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal server error")
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// ToAppError converts any error to an AppError, mapping the domain and
// storage sentinels onto the taxonomy.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var invalid *analytics.InvalidInputError
	if errors.As(err, &invalid) {
		return NewValidationErrorWithMap(invalid.Fields)
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewNotFoundError("Resource")
	case errors.Is(err, storage.ErrDuplicateRating):
		return NewDuplicateRatingError()
	case errors.Is(err, analytics.ErrInsufficientComparisonTargets):
		return NewComparisonError()
	case errors.Is(err, analytics.ErrAlreadyModerated):
		return NewValidationError("Rating has already been moderated")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewStoreError("Request timed out", err)
	}

	return NewStoreError("An unexpected error occurred", err)
}

// ErrorHandler is a gin middleware that serializes any error attached to
// the context as a structured response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			appErr := ToAppError(c.Errors.Last().Err)
			LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
		}
	}
}

// RecoveryHandler provides panic recovery with structured error responses.
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appErr := NewInternalError(fmt.Errorf("panic recovered: %v", recovered))
		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	})
}

// LogError logs an error with a level appropriate to its category.
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_category", err.Category,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	switch err.Category {
	case CategoryValidation, CategoryDuplicate, CategoryComparison, CategoryNotFound, CategoryAuth:
		logEntry.Warn(err.ErrBuilder.Msg)
	default:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Error(err.ErrBuilder.Msg, "cause", cause)
		} else {
			logEntry.Error(err.ErrBuilder.Msg)
		}
	}
}
