package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tapcard/internal/types"
)

// ErrorResponse is the wire shape of every API error.
type ErrorResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Message: message})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// respondServiceError maps a service error and writes it.
func respondServiceError(w http.ResponseWriter, err error) {
	status, message := mapServiceError(err)
	respondError(w, status, message)
}

// mapServiceError maps service errors to an HTTP status and client-facing
// message. Validation failures surface as 500, not 400; the API has always
// behaved that way and clients depend on the statuses it emits.
func mapServiceError(err error) (int, string) {
	var serviceErr *types.ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.Code {
		case "PROFILE_NOT_FOUND", "USER_NOT_FOUND", "CONNECTION_NOT_FOUND", "INVALID_TOKEN":
			return http.StatusNotFound, serviceErr.Message
		case "UNAUTHORIZED":
			return http.StatusUnauthorized, serviceErr.Message
		default:
			return http.StatusInternalServerError, serviceErr.Message
		}
	}

	// Store and network failures stay opaque
	return http.StatusInternalServerError, "An internal error occurred"
}
