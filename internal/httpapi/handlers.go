package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/imposterparty/imposter-backend/internal/account"
	"github.com/imposterparty/imposter-backend/internal/registry"
	"github.com/imposterparty/imposter-backend/internal/session"
	"github.com/imposterparty/imposter-backend/internal/types"
	"github.com/imposterparty/imposter-backend/internal/vote"
)

type API struct {
	reg   *registry.Registry
	store account.Store
	log   *zap.Logger
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) CreateGame(w http.ResponseWriter, r *http.Request) {
	var m types.ClientMessage
	if !decode(w, r, &m) {
		return
	}
	s, err := a.reg.Create(m.PlayerName, "", m.AccountID, m.Custom)
	if err != nil {
		a.writeError(w, err)
		return
	}
	view, err := s.State(session.Actor{Name: m.PlayerName})
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, view)
}

func (a *API) JoinGame(w http.ResponseWriter, r *http.Request) {
	var m types.ClientMessage
	if !decode(w, r, &m) {
		return
	}
	s, err := a.reg.Get(m.Code)
	if err != nil {
		a.writeError(w, err)
		return
	}
	view, err := s.Join("", m.PlayerName, m.AccountID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, view)
}

func (a *API) RejoinGame(w http.ResponseWriter, r *http.Request) {
	var m types.ClientMessage
	if !decode(w, r, &m) {
		return
	}
	s, err := a.reg.Get(m.Code)
	if err != nil {
		a.writeError(w, err)
		return
	}
	view, err := s.Rejoin("", m.PlayerName, m.ClaimsHost)
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, view)
}

func (a *API) StartGame(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(s *session.Session, actor session.Actor, m types.ClientMessage) error {
		return s.Start(actor)
	})
}

func (a *API) NewRound(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(s *session.Session, actor session.Actor, m types.ClientMessage) error {
		return s.NewRound(actor)
	})
}

func (a *API) AutoRound(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(s *session.Session, actor session.Actor, m types.ClientMessage) error {
		return s.AutoRound(actor)
	})
}

func (a *API) CustomRound(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(s *session.Session, actor session.Actor, m types.ClientMessage) error {
		return s.SetupCustomRound(actor, m.Category, m.Word)
	})
}

func (a *API) StartVote(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(s *session.Session, actor session.Actor, m types.ClientMessage) error {
		return s.StartVote(actor)
	})
}

func (a *API) SubmitVote(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(s *session.Session, actor session.Actor, m types.ClientMessage) error {
		return s.SubmitVote(actor, m.Accused, m.NoImposter)
	})
}

// Reveal returns the full result so the stateless caller does not need a
// socket delivery; a retry after success replays the cached result.
func (a *API) Reveal(w http.ResponseWriter, r *http.Request) {
	var m types.ClientMessage
	if !decode(w, r, &m) {
		return
	}
	s, err := a.reg.Get(m.Code)
	if err != nil {
		a.writeError(w, err)
		return
	}
	res, err := s.Reveal(session.Actor{Name: m.PlayerName})
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (a *API) GameState(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	name := r.URL.Query().Get("playerName")
	s, err := a.reg.Get(code)
	if err != nil {
		a.writeError(w, err)
		return
	}
	view, err := s.State(session.Actor{Name: name})
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, view)
}

func (a *API) mutate(w http.ResponseWriter, r *http.Request, op func(*session.Session, session.Actor, types.ClientMessage) error) {
	var m types.ClientMessage
	if !decode(w, r, &m) {
		return
	}
	s, err := a.reg.Get(m.Code)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := op(s, session.Actor{Name: m.PlayerName}, m); err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	user, err := a.store.CreateUser(r.Context(), body.Username, body.Password)
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, user)
}

func (a *API) SignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	user, err := a.store.SignIn(r.Context(), body.Username, body.Password)
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, user)
}

func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := a.store.GetUser(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	stats, err := a.store.UserStats(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"user": user, "stats": stats})
}

func (a *API) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.UserStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

func (a *API) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := a.store.Leaderboard(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	respond(w, http.StatusOK, entries)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, `{"error":"bad json"}`, http.StatusBadRequest)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.log.Error("internal error", zap.Error(err))
		respond(w, status, map[string]string{"error": "something went wrong"})
		return
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrRoomNotFound),
		errors.Is(err, session.ErrPlayerNotFound),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, account.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotHost),
		errors.Is(err, session.ErrNotAllowedToVote):
		return http.StatusForbidden
	case errors.Is(err, session.ErrNameTaken),
		errors.Is(err, account.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, session.ErrGameAlreadyStarted),
		errors.Is(err, session.ErrTooFewPlayers),
		errors.Is(err, session.ErrRoomFull),
		errors.Is(err, session.ErrInvalidRoundSetup),
		errors.Is(err, session.ErrNoActiveRound),
		errors.Is(err, session.ErrVoteNotOpen),
		errors.Is(err, vote.ErrVotesIncomplete),
		errors.Is(err, account.ErrUsernameTooShort),
		errors.Is(err, account.ErrPasswordRequired):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
