package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/eworldcup/internal/apperr"
	"github.com/AdamBeresnev/eworldcup/internal/utils"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// ReadJSON decodes a single JSON object from the body into dst, rejecting
// unknown fields and trailing data.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			return apperr.InvalidArgument("request body must not be empty")
		case errors.As(err, &syntaxErr):
			return apperr.InvalidArgument("malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return apperr.InvalidArgument("invalid type for field %q", typeErr.Field)
		case errors.As(err, &maxErr):
			return apperr.InvalidArgument("request body must not exceed %d bytes", maxErr.Limit)
		default:
			return apperr.Wrap(apperr.KindInvalidArgument, err, "invalid request body")
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.InvalidArgument("request body must contain a single JSON object")
	}
	return nil
}

// QueryInt parses an optional integer query parameter. A missing or blank
// parameter yields nil.
func QueryInt(r *http.Request, name string) (*int, error) {
	raw := utils.StringOrNil(r.URL.Query().Get(name))
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, apperr.InvalidArgument("query parameter %s must be an integer", name)
	}
	return &v, nil
}

// PathInt parses a required integer URL segment value.
func PathInt(raw, name string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidArgument("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}
