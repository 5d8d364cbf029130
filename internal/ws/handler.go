package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/imposterparty/imposter-backend/internal/registry"
	"github.com/imposterparty/imposter-backend/internal/session"
	"github.com/imposterparty/imposter-backend/internal/types"
)

// Handler runs the persistent channel. A socket starts unattached; the first
// create/join/rejoin message binds it to a session, after which every game
// message resolves through the connection id.
func Handler(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			reg:  reg,
			log:  log,
			conn: conn,
			id:   session.ConnID(randID(8)),
			out:  make(chan types.ServerMessage, 16),
		}
		defer c.detach()

		// Writer goroutine; exits when the session closes or drops us.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			defer conn.Close(websocket.StatusGoingAway, "session closed")
			for {
				select {
				case m, ok := <-c.out:
					if !ok {
						return
					}
					payload, _ := json.Marshal(m)
					ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
					_ = conn.Write(ctx, websocket.MessageText, payload)
					cancel()
				case <-writeCtx.Done():
					return
				}
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				c.send(r.Context(), types.ServerMessage{Type: "error", Error: "bad json"})
				continue
			}
			if reply, ok := c.dispatch(cm); ok {
				c.send(r.Context(), reply)
			}
		}
	}
}

type client struct {
	reg  *registry.Registry
	log  *zap.Logger
	conn *websocket.Conn
	id   session.ConnID
	out  chan types.ServerMessage
	sess *session.Session
}

// dispatch applies one client message and reports the direct reply, if any.
// Broadcast traffic reaches the socket through the subscribed outbox instead.
func (c *client) dispatch(m types.ClientMessage) (types.ServerMessage, bool) {
	actor := session.Actor{Conn: c.id}
	switch m.Type {
	case "create-game":
		s, err := c.reg.Create(m.PlayerName, c.id, m.AccountID, m.Custom)
		if err != nil {
			return errorMessage("join-error", err), true
		}
		c.attach(s)
		view, err := s.State(actor)
		if err != nil {
			return errorMessage("join-error", err), true
		}
		return types.ServerMessage{Type: "game-created", Data: view}, true

	case "join-game":
		s, err := c.reg.Get(m.Code)
		if err != nil {
			return errorMessage("join-error", err), true
		}
		view, err := s.Join(c.id, m.PlayerName, m.AccountID)
		if err != nil {
			return errorMessage("join-error", err), true
		}
		c.attach(s)
		return types.ServerMessage{Type: "joined-game", Data: view}, true

	case "rejoin-game":
		s, err := c.reg.Get(m.Code)
		if err != nil {
			return errorMessage("join-error", err), true
		}
		view, err := s.Rejoin(c.id, m.PlayerName, m.ClaimsHost)
		if err != nil {
			return errorMessage("join-error", err), true
		}
		c.attach(s)
		return types.ServerMessage{Type: "joined-game", Data: view}, true
	}

	if c.sess == nil {
		return types.ServerMessage{Type: "error", Error: "not in a game"}, true
	}

	switch m.Type {
	case "start-game":
		return ack(c.sess.Start(actor))
	case "new-round":
		return ack(c.sess.NewRound(actor))
	case "auto-round":
		return ack(c.sess.AutoRound(actor))
	case "custom-round":
		return ack(c.sess.SetupCustomRound(actor, m.Category, m.Word))
	case "start-vote":
		return ack(c.sess.StartVote(actor))
	case "submit-vote":
		return ack(c.sess.SubmitVote(actor, m.Accused, m.NoImposter))
	case "reveal-imposter":
		res, err := c.sess.Reveal(actor)
		if err != nil {
			return errorMessage("error", err), true
		}
		return types.ServerMessage{Type: "reveal-result", Data: res}, true
	case "get-state":
		view, err := c.sess.State(actor)
		if err != nil {
			return errorMessage("error", err), true
		}
		return types.ServerMessage{Type: "state", Data: view}, true
	default:
		return types.ServerMessage{Type: "error", Error: "unknown type"}, true
	}
}

func (c *client) attach(s *session.Session) {
	if c.sess != nil && c.sess != s {
		c.sess.Unsubscribe(c.id)
	}
	c.sess = s
	s.Subscribe(c.id, c.out)
}

func (c *client) detach() {
	if c.sess != nil {
		c.sess.Unsubscribe(c.id)
		c.sess.Disconnect(c.id)
	}
}

func (c *client) send(ctx context.Context, m types.ServerMessage) {
	payload, _ := json.Marshal(m)
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = c.conn.Write(wctx, websocket.MessageText, payload)
}

func ack(err error) (types.ServerMessage, bool) {
	if err != nil {
		return errorMessage("error", err), true
	}
	return types.ServerMessage{}, false
}

func errorMessage(kind string, err error) types.ServerMessage {
	if errors.Is(err, session.ErrSessionClosed) {
		err = registry.ErrRoomNotFound
	}
	return types.ServerMessage{Type: kind, Error: err.Error()}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
