package main

import (
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/eworldcup/internal/httputil"
	"github.com/AdamBeresnev/eworldcup/internal/live"
	"github.com/AdamBeresnev/eworldcup/internal/middleware"
	"github.com/AdamBeresnev/eworldcup/internal/rps"
	"github.com/AdamBeresnev/eworldcup/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type application struct {
	participants *service.ParticipantService
	schedule     *service.ScheduleService
	tournaments  *service.TournamentService
	hub          *live.Hub
	logger       *slog.Logger
}

type addParticipantRequest struct {
	Name string `json:"name"`
}

type importParticipantsRequest struct {
	Names string `json:"names"`
}

type startTournamentRequest struct {
	PlayerName   string `json:"playerName"`
	TotalPlayers int    `json:"totalPlayers"`
}

type playRoundRequest struct {
	Choice string `json:"choice"`
}

func newRouter(app *application, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/participants", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			overview, err := app.participants.List(r.Context())
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, overview)
		})

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req addParticipantRequest
			if err := httputil.ReadJSON(w, r, &req); err != nil {
				httputil.Error(w, r, err)
				return
			}
			p, err := app.participants.Add(r.Context(), req.Name)
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, p)
		})

		r.Post("/import", func(w http.ResponseWriter, r *http.Request) {
			var req importParticipantsRequest
			if err := httputil.ReadJSON(w, r, &req); err != nil {
				httputil.Error(w, r, err)
				return
			}
			added, err := app.participants.Import(r.Context(), req.Names)
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, added)
		})

		r.Delete("/{uid}", func(w http.ResponseWriter, r *http.Request) {
			if err := app.participants.Remove(r.Context(), chi.URLParam(r, "uid")); err != nil {
				httputil.Error(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	r.Get("/rounds/max", func(w http.ResponseWriter, r *http.Request) {
		n, err := httputil.QueryInt(r, "n")
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		maxRounds, err := app.schedule.GetMaxRounds(r.Context(), n)
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]int{"maxRounds": maxRounds})
	})

	r.Get("/rounds/{round}", func(w http.ResponseWriter, r *http.Request) {
		round, err := httputil.PathInt(chi.URLParam(r, "round"), "round")
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		n, err := httputil.QueryInt(r, "n")
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		result, err := app.schedule.GetRound(r.Context(), round, n)
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	})

	r.Route("/player/{index}", func(r chi.Router) {
		r.Get("/schedule", func(w http.ResponseWriter, r *http.Request) {
			index, err := httputil.PathInt(chi.URLParam(r, "index"), "index")
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			schedule, err := app.schedule.GetPlayerSchedule(r.Context(), index)
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, schedule)
		})

		r.Get("/round/{round}", func(w http.ResponseWriter, r *http.Request) {
			index, err := httputil.PathInt(chi.URLParam(r, "index"), "index")
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			round, err := httputil.PathInt(chi.URLParam(r, "round"), "round")
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			result, err := app.schedule.GetPlayerInRound(r.Context(), index, round)
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, result)
		})
	})

	r.Get("/match/remaining", func(w http.ResponseWriter, r *http.Request) {
		n, err := httputil.QueryInt(r, "n")
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		roundsPlayed, err := httputil.QueryInt(r, "roundsPlayed")
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		result, err := app.schedule.GetRemainingPairs(r.Context(), n, roundsPlayed)
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	})

	r.Route("/tournament", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			tournaments, err := app.tournaments.ListTournaments(r.Context())
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, tournaments)
		})

		r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
			var req startTournamentRequest
			if err := httputil.ReadJSON(w, r, &req); err != nil {
				httputil.Error(w, r, err)
				return
			}
			result, err := app.tournaments.StartTournament(r.Context(), req.PlayerName, req.TotalPlayers)
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, result)
		})

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Use(middleware.RequireTournamentID)

			r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
				id, _ := middleware.GetTournamentIDFromContext(r.Context())
				status, err := app.tournaments.GetStatus(r.Context(), id)
				if err != nil {
					httputil.Error(w, r, err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, status)
			})

			r.Post("/play", func(w http.ResponseWriter, r *http.Request) {
				id, _ := middleware.GetTournamentIDFromContext(r.Context())
				var req playRoundRequest
				if err := httputil.ReadJSON(w, r, &req); err != nil {
					httputil.Error(w, r, err)
					return
				}
				choice, err := rps.ParseChoice(req.Choice)
				if err != nil {
					httputil.Error(w, r, err)
					return
				}
				result, err := app.tournaments.PlayRound(r.Context(), id, choice)
				if err != nil {
					httputil.Error(w, r, err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, result)
			})

			r.Post("/advance", func(w http.ResponseWriter, r *http.Request) {
				id, _ := middleware.GetTournamentIDFromContext(r.Context())
				result, err := app.tournaments.AdvanceRound(r.Context(), id)
				if err != nil {
					httputil.Error(w, r, err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, result)
			})

			r.Get("/final", func(w http.ResponseWriter, r *http.Request) {
				id, _ := middleware.GetTournamentIDFromContext(r.Context())
				result, err := app.tournaments.GetFinalResult(r.Context(), id)
				if err != nil {
					httputil.Error(w, r, err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, result)
			})
		})
	})

	r.With(middleware.RequireTournamentID).Get("/ws/tournaments/{tournamentID}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.GetTournamentIDFromContext(r.Context())
		app.hub.ServeTournament(w, r, id)
	})

	return r
}
