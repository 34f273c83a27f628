package handler

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"
)

// response is the uniform success envelope.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// tokenErrorResponse is the judge-gate failure body. The error kind is
// surfaced verbatim so the scoring UI can message "link expired" and "wrong
// link" differently.
type tokenErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, response{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, response{Success: true, Message: message})
}

// respondError translates service errors into HTTP responses. Token errors
// and AppErrors keep their own shapes; anything else is a generic 500.
func respondError(w http.ResponseWriter, err error, log *logger.Logger) {
	switch e := err.(type) {
	case *apperrors.TokenError:
		respondJSON(w, e.StatusCode(), tokenErrorResponse{
			Success: false,
			Error:   e.Kind,
			Message: e.Message,
		})
	case *apperrors.AppError:
		if e.Internal != nil {
			log.WithError(e).Error("Request failed")
		}
		respondJSON(w, e.StatusCode, map[string]interface{}{
			"success": false,
			"error": map[string]interface{}{
				"type":      e.Type,
				"message":   e.Message,
				"details":   e.Details,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		})
	default:
		log.WithError(err).Error("Unexpected error")
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error": map[string]interface{}{
				"type":    apperrors.ErrorTypeInternal,
				"message": "Something went wrong",
			},
		})
	}
}
