package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/eworldcup/internal/apperr"
)

type errorBody struct {
	Error string      `json:"error"`
	Kind  apperr.Kind `json:"kind,omitempty"`
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: apperr.KindInvalidArgument})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, errorBody{Error: msg, Kind: apperr.KindNotFound})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument, apperr.KindInvalidOperation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err using its kind. Errors without a client facing kind, and
// internal inconsistencies, are logged and reported as opaque 500s.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		slog.Info("request cancelled", "path", r.URL.Path)
		return
	}

	status := StatusFor(err)
	switch status {
	case http.StatusInternalServerError:
		InternalServerError(w, "request failed", err)
		return
	case http.StatusNotFound:
		NotFound(w, apperr.MessageOf(err), err)
		return
	}

	slog.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	WriteJSON(w, status, errorBody{Error: apperr.MessageOf(err), Kind: apperr.KindOf(err)})
}
