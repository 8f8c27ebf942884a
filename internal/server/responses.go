package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/audit"
)

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, dataResponse{Data: v})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody decodes a request body strictly: unknown fields are rejected so
// that, for example, lines sent to the update endpoint fail loudly.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if val, ok := v.(api.Validator); ok {
		if err := val.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func mapError(err error) int {
	var ve *audit.ValidationError
	switch {
	case errors.Is(err, audit.ErrEntryNotFound), errors.Is(err, audit.ErrTrialBalanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, audit.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, audit.ErrUnbalancedEntry),
		errors.Is(err, audit.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ve),
		errors.Is(err, audit.ErrInvalidKind),
		errors.Is(err, audit.ErrInvalidStatus),
		errors.Is(err, audit.ErrInvalidLineType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
