// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body for every non-2xx answer.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns errors into JSON responses and logs server-side detail.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Write normalizes err to a StandardError, logs it and writes the response. The
// client only sees the StandardError message, never Details.
func (h *ErrorHandler) Write(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := normalizeError(err)
	status := HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"code":    stdErr.Code,
		"details": stdErr.Details,
		"status":  status,
	}
	if r != nil {
		fields["path"] = r.URL.Path
		fields["method"] = r.Method
	}
	if h.logger != nil {
		if status >= http.StatusInternalServerError {
			h.logger.Error(stdErr.Message, fields)
		} else {
			h.logger.Warn(stdErr.Message, fields)
		}
	}

	WriteJSON(w, status, ErrorResponse{Success: false, Error: stdErr.Message})
}

// WriteValidation writes the 400 body carrying per-field messages.
func (h *ErrorHandler) WriteValidation(w http.ResponseWriter, details map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   "Validation failed",
		Details: details,
	})
}

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// normalizeError ensures we always have a StandardError
func normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	return newError(ErrCodeInternal, "Internal server error", err, false)
}
