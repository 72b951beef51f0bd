package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ukaji3/sheetstats-go/internal/chart"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/timeline"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one rejected request parameter
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewAPIError creates a new APIError with the given parameters
func NewAPIError(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// InvalidRequest creates a 400 error for a malformed request
func InvalidRequest(err error) *APIError {
	return NewAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ValidationFailed creates a 400 error listing the rejected parameters
func ValidationFailed(errs []ValidationError) *APIError {
	return NewAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", errs)
}

// RangeTooLarge creates a 400 error for a query spanning more buckets than allowed
func RangeTooLarge(buckets, limit int) *APIError {
	return NewAPIError(http.StatusBadRequest, "RANGE_TOO_LARGE", "Date range spans too many periods",
		map[string]int{"buckets": buckets, "max_buckets": limit})
}

// SeriesNotFound creates a 404 error for an unknown series
func SeriesNotFound(series string) *APIError {
	return NewAPIError(http.StatusNotFound, "SERIES_NOT_FOUND", fmt.Sprintf("series %q not found", series), series)
}

// NoWorkbook creates a 409 error for requests that need an uploaded workbook
func NoWorkbook() *APIError {
	return NewAPIError(http.StatusConflict, "NO_WORKBOOK", "No workbook uploaded in this session", nil)
}

// SessionExpired creates a 409 error for a session closed while in use
func SessionExpired() *APIError {
	return NewAPIError(http.StatusConflict, "SESSION_EXPIRED", "Session expired, upload the workbook again", nil)
}

// InvalidWorkbook creates a 422 error for an unreadable or mismatched workbook
func InvalidWorkbook(err error) *APIError {
	return NewAPIError(http.StatusUnprocessableEntity, "INVALID_WORKBOOK", "Workbook could not be processed", err.Error())
}

// PayloadTooLarge creates a 413 error for oversized uploads
func PayloadTooLarge(limit int64) *APIError {
	return NewAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload exceeds maximum allowed size",
		map[string]int64{"max_size": limit})
}

// TooManyRequests creates a 429 error
func TooManyRequests() *APIError {
	return NewAPIError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded", nil)
}

// Internal creates a 500 error
func Internal(err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}

// toAPIError maps core and validation errors to their HTTP representation.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
			})
		}
		return ValidationFailed(out)
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return PayloadTooLarge(maxErr.Limit)
	}

	var analysisErr *sheetstats.AnalysisError
	switch {
	case errors.Is(err, ErrSessionClosed):
		return SessionExpired()
	case errors.Is(err, sheetstats.ErrSheetNotFound) && errors.As(err, &analysisErr):
		return SeriesNotFound(analysisErr.Series)
	case errors.Is(err, sheetstats.ErrInvalidFormat), errors.Is(err, sheetstats.ErrInvalidLayout):
		return InvalidWorkbook(err)
	case errors.Is(err, timeline.ErrRangeTooLarge), errors.Is(err, chart.ErrTooManyBars):
		return NewAPIError(http.StatusBadRequest, "RANGE_TOO_LARGE", "Date range spans too many periods", err.Error())
	case errors.Is(err, chart.ErrEmptySeries):
		return NewAPIError(http.StatusBadRequest, "EMPTY_RANGE", "Date range contains no periods", err.Error())
	case errors.As(err, &analysisErr) && analysisErr.Component == "query":
		return InvalidRequest(err)
	}
	return Internal(err)
}

// renderError writes err as a JSON APIError
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err.Error())
	}
	s.metrics.errors.WithLabelValues(apiErr.ErrorCode).Inc()
	_ = render.Render(w, r, apiErr)
}
