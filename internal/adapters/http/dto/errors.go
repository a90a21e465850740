// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/book-service/internal/domain"
	"github.com/jsamuelsen/book-service/internal/platform/logging"
)

// ErrorResponse is the error envelope for all error responses.
// Message is always present; Cause carries the underlying reason when one
// is safe to expose.
type ErrorResponse struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Cause is the secondary error text, serialized as "error".
	Cause string `json:"error,omitempty"`

	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR").
	Code string `json:"code,omitempty"`

	// Details contains field-level error messages for validation failures.
	Details map[string]string `json:"details,omitempty"`

	TraceID string `json:"traceId,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	// ErrorCodeNotFound indicates the requested resource was not found.
	ErrorCodeNotFound = "NOT_FOUND"

	// ErrorCodeValidation indicates request validation failed.
	ErrorCodeValidation = "VALIDATION_ERROR"

	// ErrorCodeForbidden indicates the operation is not permitted.
	ErrorCodeForbidden = "FORBIDDEN"

	// ErrorCodeUnauthorized indicates authentication is required.
	ErrorCodeUnauthorized = "UNAUTHORIZED"

	// ErrorCodeInternal indicates an internal server error.
	ErrorCodeInternal = "INTERNAL_ERROR"

	// ErrorCodeTimeout indicates the request timed out.
	ErrorCodeTimeout = "TIMEOUT"

	// ErrorCodeBadRequest indicates the request was malformed.
	ErrorCodeBadRequest = "BAD_REQUEST"
)

// Fixed response messages.
const (
	MessageResourceNotFound = "Resource not found"
	MessageInternal         = "Internal Server Error"
	MessageValidation       = "Validation failed"
	MessageMalformed        = "Malformed request"
	MessageTimeout          = "Request timed out"
)

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// NewErrorResponseWithDetails creates an error response with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WithCause sets the secondary "error" field.
func (e *ErrorResponse) WithCause(cause string) *ErrorResponse {
	e.Cause = cause
	return e
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MapError maps an error returned by the application layer to an HTTP status
// and response body. The decision is made on the error kind, never on text.
//
//   - not found: 404 with "<Entity> not found"
//   - validation: 400 with the offending field in details
//   - request deadline exceeded: 504
//   - anything else: 500; a ServiceError contributes its operation message and
//     the storage layer's fixed message as the cause, never the driver error
func MapError(err error) (int, *ErrorResponse) {
	var svcErr *domain.ServiceError

	hasSvc := errors.As(err, &svcErr)

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, notFoundMessage(err))

	case domain.IsValidation(err):
		message := MessageValidation
		if hasSvc {
			message = svcErr.Message
		}

		resp := NewErrorResponse(ErrorCodeValidation, message)

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			resp.Cause = validationErr.Error()
			if validationErr.Field != "" {
				resp.Details = map[string]string{validationErr.Field: validationErr.Message}
			}
		}

		return http.StatusBadRequest, resp

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, MessageTimeout)

	case hasSvc:
		resp := NewErrorResponse(ErrorCodeInternal, svcErr.Message)

		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			resp.Cause = storageErr.Message
		}

		return http.StatusInternalServerError, resp

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, MessageInternal)
	}
}

// HandleError writes the response for err, attaching the trace ID.
// Server errors are logged with the full error chain.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logServerError(c, status, err, resp.TraceID)
	}

	c.JSON(status, resp)
}

// HandleErrorAs is HandleError for handlers that name the failed action.
// A server error is reported with message as "message" and the application
// layer's message as "error"; other statuses are unchanged.
func HandleErrorAs(c *gin.Context, err error, message string) {
	status, resp := MapError(err)
	resp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		var svcErr *domain.ServiceError
		if errors.As(err, &svcErr) {
			resp.Cause = svcErr.Message
		}

		resp.Message = message
	}

	if status >= http.StatusInternalServerError {
		logServerError(c, status, err, resp.TraceID)
	}

	c.JSON(status, resp)
}

// HandleBindError writes a 400 for a request that failed binding or
// validation. req supplies field message overrides when it implements
// FieldMessages.
func HandleBindError(c *gin.Context, req any, err error) {
	var resp *ErrorResponse

	if errors.Is(err, ErrValidation) {
		resp = NewErrorResponseWithDetails(ErrorCodeValidation, MessageValidation, ValidationErrorsFor(req, err))
	} else {
		resp = NewErrorResponse(ErrorCodeBadRequest, MessageMalformed).WithCause(bindCause(err))
	}

	c.JSON(http.StatusBadRequest, resp.WithTraceID(GetTraceID(c)))
}

// GetTraceID returns the trace ID for the request: an explicit "trace_id"
// context value, then the active span, then the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	if c.Request == nil {
		return ""
	}

	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return c.GetHeader("X-Request-ID")
}

func logServerError(c *gin.Context, status int, err error, traceID string) {
	ctx := c.Request.Context()

	logging.FromContext(ctx).ErrorContext(ctx, "request failed",
		slog.Int("status", status),
		slog.Any("error", err),
		slog.String("trace_id", traceID),
	)
}

func notFoundMessage(err error) string {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) && nf.Entity != "" {
		return strings.ToUpper(nf.Entity[:1]) + nf.Entity[1:] + " not found"
	}

	return MessageResourceNotFound
}

// bindCause strips the sentinel prefix from a binding error.
func bindCause(err error) string {
	return strings.TrimPrefix(err.Error(), ErrBinding.Error()+": ")
}
