package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/eworldcup/internal/httputil"
	"github.com/go-chi/chi/v5"
)

type ContextKey string

const TournamentIDKey ContextKey = "tournamentID"

// RequireTournamentID parses the {tournamentID} URL parameter and stores it
// in the request context.
func RequireTournamentID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "tournamentID")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httputil.BadRequest(w, "Invalid tournament ID", err)
			return
		}

		ctx := context.WithValue(r.Context(), TournamentIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetTournamentIDFromContext(ctx context.Context) (int64, bool) {
	val := ctx.Value(TournamentIDKey)
	if val == nil {
		return 0, false
	}

	id, ok := val.(int64)
	return id, ok
}
