// Package registry owns the process-wide map of live sessions. Like the
// sessions themselves it runs as a single message-draining goroutine, which
// makes the code-collision check and the insert one atomic step.
package registry

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	mrand "math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imposterparty/imposter-backend/internal/account"
	"github.com/imposterparty/imposter-backend/internal/session"
	"github.com/imposterparty/imposter-backend/internal/wordbank"
)

var ErrRoomNotFound = errors.New("room not found")

// Ambiguous glyphs (0/O, 1/I) are left out of room codes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 6

type regMsg interface{ isRegMsg() }

type createMsg struct {
	hostName  string
	hostConn  session.ConnID
	accountID string
	custom    bool
	reply     chan *session.Session
}

type getMsg struct {
	code  string
	reply chan *session.Session
}

type removeMsg struct{ code string }

type countMsg struct{ reply chan int }

type shutdownMsg struct{}

func (createMsg) isRegMsg()   {}
func (getMsg) isRegMsg()      {}
func (removeMsg) isRegMsg()   {}
func (countMsg) isRegMsg()    {}
func (shutdownMsg) isRegMsg() {}

type Config struct {
	Bank  *wordbank.Bank
	Store account.Store
	Log   *zap.Logger
	Grace time.Duration
	// Seed drives session round generation; zero means time-seeded.
	Seed int64
}

type Registry struct {
	cfg      Config
	inbox    chan regMsg
	sessions map[string]*session.Session
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, cfg Config) *Registry {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	r := &Registry{
		cfg:      cfg,
		inbox:    make(chan regMsg, 64),
		sessions: make(map[string]*session.Session),
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

func (r *Registry) loop() {
	seed := r.cfg.Seed
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case createMsg:
				code := r.uniqueCode()
				seed++
				s := session.New(r.ctx, session.Config{
					GameID:  uuid.NewString(),
					Code:    code,
					Custom:  msg.custom,
					Bank:    r.cfg.Bank,
					Store:   r.cfg.Store,
					Log:     r.cfg.Log,
					Rand:    mrand.New(mrand.NewSource(seed)),
					Grace:   r.cfg.Grace,
					OnEmpty: r.dropWhenEmpty,
				}, msg.hostName, msg.hostConn, msg.accountID)
				r.sessions[code] = s
				r.cfg.Log.Info("session created", zap.String("code", code), zap.Bool("custom", msg.custom))
				msg.reply <- s

			case getMsg:
				msg.reply <- r.sessions[normalize(msg.code)] // may be nil

			case removeMsg:
				if _, ok := r.sessions[msg.code]; ok {
					delete(r.sessions, msg.code)
					r.cfg.Log.Info("session removed", zap.String("code", msg.code))
				}

			case countMsg:
				msg.reply <- len(r.sessions)

			case shutdownMsg:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Registry) shutdown() {
	for code, s := range r.sessions {
		s.Shutdown()
		delete(r.sessions, code)
	}
	r.cancel()
}

// dropWhenEmpty is handed to each session; it fires from the session loop, so
// removal goes through the inbox rather than touching the map directly.
func (r *Registry) dropWhenEmpty(s *session.Session) {
	select {
	case r.inbox <- removeMsg{code: s.Code()}:
	case <-r.ctx.Done():
	}
}

func (r *Registry) uniqueCode() string {
	for {
		code := generateCode()
		if _, taken := r.sessions[code]; !taken {
			return code
		}
	}
}

func generateCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			code[i] = codeAlphabet[mrand.Intn(len(codeAlphabet))]
			continue
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create allocates a room code, builds the session with the requester seated
// as host, and registers it.
func (r *Registry) Create(hostName string, hostConn session.ConnID, accountID string, custom bool) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	select {
	case r.inbox <- createMsg{hostName: hostName, hostConn: hostConn, accountID: accountID, custom: custom, reply: reply}:
	case <-r.ctx.Done():
		return nil, session.ErrSessionClosed
	}
	select {
	case s := <-reply:
		return s, nil
	case <-r.ctx.Done():
		return nil, session.ErrSessionClosed
	}
}

// Get looks a session up by room code, case-insensitively.
func (r *Registry) Get(code string) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	select {
	case r.inbox <- getMsg{code: code, reply: reply}:
	case <-r.ctx.Done():
		return nil, ErrRoomNotFound
	}
	select {
	case s := <-reply:
		if s == nil {
			return nil, ErrRoomNotFound
		}
		return s, nil
	case <-r.ctx.Done():
		return nil, ErrRoomNotFound
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	reply := make(chan int, 1)
	select {
	case r.inbox <- countMsg{reply: reply}:
	case <-r.ctx.Done():
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-r.ctx.Done():
		return 0
	}
}

func (r *Registry) Shutdown() {
	select {
	case r.inbox <- shutdownMsg{}:
	case <-r.ctx.Done():
	}
}
