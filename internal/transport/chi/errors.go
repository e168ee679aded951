package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	logpkg "github.com/kailas-cloud/vocabsearch/internal/logger"
)

// ErrorCode is the machine-readable error code of an API error.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeNotFound         ErrorCode = "not_found"
	CodeBuildFailed      ErrorCode = "build_failed"
	CodeIndexNotReady    ErrorCode = "index_not_ready"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// persistenceWarningHeader is set when a selection change was applied in memory but not stored.
const persistenceWarningHeader = "X-Persistence-Warning"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	detailedHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
	sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, CodeIndexNotReady),
	detailedHandler(domain.ErrBuild, http.StatusUnprocessableEntity, CodeBuildFailed),
}

// sentinelHandler answers with the sentinel's own message, hiding wrapped details.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// detailedHandler answers with the full error message; used for errors caused by client input.
func detailedHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
