package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ssargent/surfpatch/pkg/address"
	"github.com/ssargent/surfpatch/pkg/codec"
	"github.com/ssargent/surfpatch/pkg/ledger"
	"github.com/ssargent/surfpatch/pkg/storage"
)

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) != 1 {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := APIResponse{
		Success: true,
		Data:    data,
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}

// statusForError maps the error taxonomy onto HTTP status codes
func statusForError(err error) int {
	var codecErr *codec.CodecError
	switch {
	case errors.Is(err, ledger.ErrRecordAbsent), errors.Is(err, storage.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, address.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.As(err, &codecErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// sendOperationError sends err with the status its kind maps to
func sendOperationError(w http.ResponseWriter, err error) {
	sendError(w, err.Error(), statusForError(err))
}
