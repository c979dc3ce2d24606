package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/omnistat/platform-server/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleError maps service sentinels to HTTP statuses. Unrecognized
// errors never leak details to the client.
func handleError(w http.ResponseWriter, err error) {
	var status int
	message := err.Error()

	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenInvalid):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrUserNotFound), errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrBatchTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, model.ErrUnavailable):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.ErrValidation
	}
	return nil
}
