package server

import (
	"encoding/json"
	"net/http"

	"github.com/tracelayer/gridroute/pkg/errors"
)

// apiError is the JSON error body. The code mirrors pkg/errors codes so
// clients can branch without parsing messages.
type apiError struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError maps the error's code to a status and emits the JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, apiError{Error: errors.UserMessage(err), Code: code})
}

// httpStatus maps an error code to a response status. Routing failures are
// not in the table: a request whose nets cannot be routed is still a
// successful API call, with the failures recorded per net in the result.
func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTech,
		errors.ErrCodeInvalidProblem, errors.ErrCodeInvalidLayer,
		errors.ErrCodeInvalidNet, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound,
		errors.ErrCodeRunNotFound, errors.ErrCodeViaNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
