package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request, bodyLimit int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logx.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeAppError logs err server-side and answers with its client-safe form.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errx.ToAppError(err)
	log := logx.Ctx(r.Context())
	if appErr.Status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", appErr.Status).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", appErr.Status).Msg("request rejected")
	}
	writeError(w, appErr.Status, appErr.Message)
}
