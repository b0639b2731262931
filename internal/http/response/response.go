package response

import (
	"encoding/json"
	"net/http"

	"github.com/agrovia/farmstead/internal/domain"
	"github.com/agrovia/farmstead/pkg/logger"
)

// ErrorResponse is the JSON error envelope for every failure.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	JSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// Error maps a service failure to its status code and envelope. Internal
// causes never reach the client.
func Error(w http.ResponseWriter, err error) {
	de := domain.AsError(err)
	switch de.Kind {
	case domain.KindValidation:
		WriteError(w, http.StatusBadRequest, de.Message, CodeInvalidInput)
	case domain.KindAuth:
		WriteError(w, http.StatusUnauthorized, de.Message, CodeUnauthorized)
	case domain.KindNotFound:
		WriteError(w, http.StatusNotFound, de.Message, CodeNotFound)
	case domain.KindConflict:
		WriteError(w, http.StatusConflict, de.Message, CodeConflict)
	case domain.KindRateLimit:
		WriteError(w, http.StatusTooManyRequests, de.Message, CodeRateLimit)
	default:
		WriteError(w, http.StatusInternalServerError, de.Message, CodeInternalError)
	}
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}
