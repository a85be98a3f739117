package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inotebook/inotebook-go/internal/service"
)

const (
	maxBodyBytes = 1 << 20 // 1MB
	maxIDLength  = 36

	invalidCredentialsMessage = "Enter valid credentials"
	internalErrorMessage      = "internal server error"
)

var errBodyTooLarge = errors.New("request body too large")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// message is the envelope for responses that carry only a status text.
func message(success bool, msg string) map[string]any {
	return map[string]any{"success": success, "response": msg}
}

func errorResponse(msg string) map[string]any {
	return message(false, msg)
}

// decodeBody reads a JSON body capped at maxBodyBytes into v and writes the
// error response itself when it fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(errBodyTooLarge.Error()))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// pathID returns the {id} URL parameter, writing a 400 when it is unusable.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > maxIDLength {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid id"))
		return "", false
	}
	return id, true
}

// writeServiceError maps service errors to HTTP responses. Unexpected errors
// are logged and reported generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse(verr.Message))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, errorResponse(invalidCredentialsMessage))
	case errors.Is(err, service.ErrInvalidReset):
		writeJSON(w, http.StatusBadRequest, errorResponse(service.ErrInvalidReset.Error()))
	case errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse(service.ErrEmailTaken.Error()))
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse(service.ErrForbidden.Error()))
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(service.ErrUserNotFound.Error()))
	case errors.Is(err, service.ErrNoteNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(service.ErrNoteNotFound.Error()))
	case errors.Is(err, service.ErrSessionExpired):
		writeJSON(w, http.StatusGone, errorResponse(service.ErrSessionExpired.Error()))
	case errors.Is(err, service.ErrDeliveryFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse(service.ErrDeliveryFailed.Error()))
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse(internalErrorMessage))
	}
}
