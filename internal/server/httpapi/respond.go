package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkuznecov/auctionsite/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses. Internal
// details never leak: unknown errors become a bare 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, common.ErrInvalidArgument), errors.Is(err, common.ErrTimeMachine):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrSessionExpired),
		errors.Is(err, common.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrNameInUse), errors.Is(err, common.ErrInvalidOperation),
		errors.Is(err, common.ErrForeignKey), errors.Is(err, common.ErrConcurrentChange):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, common.ErrStoreUnavailable):
		status, msg = http.StatusServiceUnavailable, err.Error()
	default:
		s.log.Error(r.Context(), "request failed", "error", err)
	}

	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}
