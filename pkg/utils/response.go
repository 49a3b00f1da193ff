package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"megacrm-backend/internal/services"
	"megacrm-backend/internal/store"

	"github.com/go-playground/validator/v10"
)

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[HTTP] encode response: %v", err)
	}
}

// Error writes {"error": message}
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps service and store errors to HTTP statuses.
// Validator failures become 422 with the failing tag per field.
func RespondServiceError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": fields,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, store.ErrInvalidName):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicatePhone), errors.Is(err, services.ErrConflict):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNotFound), errors.Is(err, store.ErrTableNotFound), errors.Is(err, store.ErrRowOutOfRange):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUnavailable), store.IsTransient(err):
		log.Printf("[HTTP] unavailable: %v", err)
		Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		log.Printf("[HTTP] internal error: %v", err)
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
