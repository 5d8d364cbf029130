package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/imposterparty/imposter-backend/internal/account"
	"github.com/imposterparty/imposter-backend/internal/registry"
	"github.com/imposterparty/imposter-backend/internal/ws"
)

// SetupRoutes wires both transports onto one router. Every mutating game
// operation exposed here mirrors a socket message with identical guards; a
// client on a degraded socket can fall back to these and reach the same
// session semantics.
func SetupRoutes(reg *registry.Registry, store account.Store, log *zap.Logger) http.Handler {
	api := &API{reg: reg, store: store, log: log}
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/health", api.Health)
	r.Get("/ws", ws.Handler(reg, log))

	r.Route("/api/game", func(r chi.Router) {
		r.Post("/create", api.CreateGame)
		r.Post("/join", api.JoinGame)
		r.Post("/rejoin", api.RejoinGame)
		r.Post("/start", api.StartGame)
		r.Post("/new-round", api.NewRound)
		r.Post("/auto-round", api.AutoRound)
		r.Post("/custom-round", api.CustomRound)
		r.Post("/start-vote", api.StartVote)
		r.Post("/vote", api.SubmitVote)
		r.Post("/reveal", api.Reveal)
		r.Get("/state", api.GameState)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", api.CreateUser)
		r.Post("/auth/sign-in", api.SignIn)
		r.Get("/users/{id}", api.GetUser)
		r.Get("/users/{id}/stats", api.UserStats)
		r.Get("/leaderboard", api.Leaderboard)
	})

	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
