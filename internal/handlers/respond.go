package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"mall-api/internal/apperr"
	"mall-api/internal/middleware"
	"mall-api/internal/models"
)

// envelope is the success body: {"success": true, <key>: <value>, ...}.
type envelope map[string]any

func respondWithJSON(w http.ResponseWriter, code int, payload envelope) {
	payload["success"] = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithError renders err with the status of its kind. Internal errors
// are logged here and reach the client only as a generic message.
func respondWithError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(middleware.ErrorResponse{
		Success: false,
		Message: apperr.Message(err),
		Errors:  apperr.DetailsOf(err),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	return nil
}

// actorFrom returns the authenticated actor. Routes that call it sit behind
// the Authentication middleware.
func actorFrom(r *http.Request) (models.Actor, error) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		return actor, apperr.Unauthenticated("Unauthorized - no token provided")
	}
	return actor, nil
}

func queryInt(r *http.Request, key string, fallback, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return fallback
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
