package handlers

import (
	"errors"
	"net/http"
	"strings"

	"evaluation-service/internal/uniformity"
	"evaluation-service/shared/modules/utils"
)

// MapErrorToHTTPStatusExtended maps a service error to its API error code
// and HTTP status. Services tag errors with a "badrequest:", "not_found:",
// "unauthorized:" or "forbidden:" prefix.
func MapErrorToHTTPStatusExtended(err error) (string, int) {
	var validationErr utils.ValidationError
	switch {
	case errors.Is(err, uniformity.ErrInsufficientData):
		return "INSUFFICIENT_DATA", http.StatusUnprocessableEntity
	case errors.As(err, &validationErr):
		return "VALIDATION_ERROR", http.StatusBadRequest
	}

	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "badrequest"):
		return "VALIDATION_ERROR", http.StatusBadRequest
	case strings.HasPrefix(msg, "not_found"):
		return "NOT_FOUND", http.StatusNotFound
	case strings.HasPrefix(msg, "unauthorized"):
		return "UNAUTHORIZED", http.StatusUnauthorized
	case strings.HasPrefix(msg, "forbidden"):
		return "FORBIDDEN", http.StatusForbidden
	default:
		return "INTERNAL_ERROR", http.StatusInternalServerError
	}
}

// errorMessage strips the routing prefix from a service error.
func errorMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"badrequest: ", "not_found: ", "unauthorized: ", "forbidden: "} {
		if rest, ok := strings.CutPrefix(msg, prefix); ok {
			return rest
		}
	}
	return msg
}
