package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"hostlink/internal/claim"
	"hostlink/internal/database"
)

// errorResponse is the JSON error body. Code is machine-readable so
// operator tooling and host agents can distinguish retry from re-issue
// from alert.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeClaimError maps claim/store errors to distinct HTTP statuses
// and error codes. Failure responses never carry issuer information.
func writeClaimError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrClaimNotFound):
		writeError(w, http.StatusNotFound, "not_found", "claim code not recognized")
	case errors.Is(err, database.ErrClaimExpired):
		writeError(w, http.StatusGone, "expired", "claim code has expired")
	case errors.Is(err, database.ErrClaimRedeemed):
		writeError(w, http.StatusConflict, "already_redeemed", "claim code was already redeemed")
	case errors.Is(err, database.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "store temporarily unavailable, retry later")
	case errors.Is(err, claim.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, claim.ErrTooManyClaims):
		writeError(w, http.StatusTooManyRequests, "too_many_claims", "active claim limit reached")
	case errors.Is(err, claim.ErrInvalidDescriptor):
		writeError(w, http.StatusBadRequest, "invalid_descriptor", "host descriptor requires a name")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
