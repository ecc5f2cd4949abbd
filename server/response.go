package server

import (
	"encoding/json"
	"net/http"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string   `json:"error"`
	Hints []string `json:"hints,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warnw("Failed to encode response", logger.FieldError, err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.IsInvalidRequestError(err):
		return http.StatusBadRequest
	case errors.IsConflictError(err):
		return http.StatusConflict
	case errors.IsServiceUnavailableError(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeErr reports err with the status its sentinel implies. Hints attached
// with errors.WithHint are passed to the view.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := s.log.With(logger.FieldsFromContext(r.Context())...)
	if status >= http.StatusInternalServerError {
		log.Errorw("Request failed", logger.FieldPath, r.URL.Path, logger.FieldError, err)
	} else {
		log.Debugw("Request rejected", logger.FieldPath, r.URL.Path, logger.FieldStatus, status, logger.FieldError, err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Hints: errors.GetAllHints(err)})
}

// readJSON decodes a JSON request body, writing a 400 on failure
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
