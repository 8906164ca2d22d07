package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/payment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondErr maps err onto a status through the error taxonomy.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	var (
		valErr *domain.ValidationError
		status int
		code   = string(domain.Classify(err))
	)
	switch {
	case errors.Is(err, checkout.ErrProfileIncomplete):
		s.respondError(w, http.StatusUnprocessableEntity, "profile-incomplete", err.Error())
		return
	case errors.Is(err, payment.ErrUnknownReference):
		s.respondError(w, http.StatusNotFound, "unknown-reference", err.Error())
		return
	case errors.As(err, &valErr):
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: valErr.Message, Code: code, Details: valErr.Field})
		return
	}

	switch domain.Classify(err) {
	case domain.KindNoSession:
		status = http.StatusUnauthorized
	case domain.KindBusy, domain.KindStale:
		status = http.StatusConflict
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindNetwork:
		status = http.StatusServiceUnavailable
	case domain.KindBackend, domain.KindMalformed, domain.KindReconciliation:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	if status >= 500 {
		s.logger.Error("request failed", zap.String("kind", code), zap.Error(err))
	}
	s.respondError(w, status, code, err.Error())
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
