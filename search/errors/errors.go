package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
)

// Search service errors
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidRequestBody = errors.New("invalid request body")
	ErrDatabaseOperation  = errors.New("database operation failed")
)

// Error codes
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeInternalError      = "INTERNAL_ERROR"
)

// InternalErrorMessage is the only text a caller sees for store or system failures
const InternalErrorMessage = "Internal server error"

// SearchError represents a search service error with additional context
type SearchError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// NewSearchError creates a new SearchError
func NewSearchError(code, message string, cause error) *SearchError {
	return &SearchError{Code: code, Message: message, Cause: cause}
}

// FieldError is one field-level validation failure. Field is a path such as
// groups[0].conditions[1].operator.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level failure of a request
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Field + ": " + d.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError builds a ValidationError from a single failure
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Details: []FieldError{{Field: field, Message: message}}}
}

// ErrorResponse is the error body of every search endpoint
type ErrorResponse struct {
	Success bool         `json:"success"`
	Code    string       `json:"code"`
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// HandleServiceError maps an error onto the HTTP response.
// Unrecognized errors are logged and answered with a generic 500.
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeValidationFailed,
			Error:   "Validation failed",
			Details: validationErr.Details,
		})
	case errors.Is(err, ErrInvalidRequestBody):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:  CodeInvalidRequestBody,
			Error: "Invalid request body",
		})
	case errors.Is(err, ErrUnauthorized):
		return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
			Code:  CodeUnauthorized,
			Error: "Authentication required",
		})
	case errors.Is(err, ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Code:  CodeNotFound,
			Error: "Not found",
		})
	default:
		log.ErrorWithContext(c.UserContext(), "search request failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:  CodeInternalError,
			Error: InternalErrorMessage,
		})
	}
}
