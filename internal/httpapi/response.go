package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/coursekit/internal/careerpath"
	"github.com/abhisek/coursekit/internal/chat"
	"github.com/abhisek/coursekit/internal/course"
	"github.com/abhisek/coursekit/internal/llm"
	"github.com/abhisek/coursekit/internal/progress"
	"github.com/abhisek/coursekit/internal/storage"
	"github.com/abhisek/coursekit/internal/syllabus"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: message, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// writeError maps a service error onto a status and code. A chat failure
// always reads as not-understood to the caller, even when the model backend
// was down underneath; the outage is still logged.
func (s *Server) writeError(c *gin.Context, err error) {
	status, code, msg := classify(err)
	switch {
	case status >= http.StatusInternalServerError:
		s.log.Error("request failed", "path", c.FullPath(), "code", code, "error", err)
	case llm.IsUnavailable(err):
		s.log.Warn("request failed on unavailable model", "path", c.FullPath(), "code", code, "error", err)
	}
	respondError(c, status, code, msg)
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, syllabus.ErrInvalidRequest),
		errors.Is(err, careerpath.ErrInvalidRequest),
		errors.Is(err, chat.ErrEmptyQuery):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, syllabus.ErrNotFound), errors.Is(err, course.ErrSyllabusNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, chat.ErrNotUnderstood):
		return http.StatusUnprocessableEntity, "not_understood", chat.ErrNotUnderstood.Error()
	case llm.IsUnavailable(err):
		return http.StatusServiceUnavailable, "llm_unavailable", "language model is unavailable, try again later"
	case llm.IsInvalidResponse(err):
		return http.StatusBadGateway, "llm_invalid_response", "language model returned an unusable response"
	case errors.Is(err, storage.ErrStorage):
		return http.StatusBadGateway, "storage_failure", "object storage request failed"
	case errors.Is(err, progress.ErrTableMissing):
		return http.StatusInternalServerError, "progress_unavailable", "learner progress data is not available"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
