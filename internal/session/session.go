// Package session implements the per-room game state machine. Each session
// runs as a single goroutine draining a message inbox, so handlers run to
// completion and no two operations on the same room ever interleave. Both
// transports resolve to the same operations here.
package session

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/imposterparty/imposter-backend/internal/account"
	"github.com/imposterparty/imposter-backend/internal/round"
	"github.com/imposterparty/imposter-backend/internal/types"
	"github.com/imposterparty/imposter-backend/internal/vote"
	"github.com/imposterparty/imposter-backend/internal/wordbank"
)

var (
	ErrPlayerNotFound     = errors.New("no such player in this game")
	ErrNotHost            = errors.New("only the host can do that")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrTooFewPlayers      = errors.New("not enough players")
	ErrRoomFull           = errors.New("room is full")
	ErrNameTaken          = errors.New("that name is already taken")
	ErrNotAllowedToVote   = errors.New("you are not voting this round")
	ErrInvalidRoundSetup  = errors.New("invalid category/word for custom round")
	ErrNoActiveRound      = errors.New("no active round")
	ErrVoteNotOpen        = errors.New("voting is not open")
	ErrSessionClosed      = errors.New("session closed")
)

const (
	MaxPlayers         = 10
	MinStandardPlayers = 4
	MinCustomPlayers   = 3 // host plus two
)

type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
)

type VotePhase string

const (
	VoteIdle     VotePhase = "idle"
	VoteOpen     VotePhase = "voting"
	VoteRevealed VotePhase = "revealed"
)

// ConnID is the ephemeral transport handle of a connection. Game state never
// keys off it; a rejoin swaps it in place.
type ConnID string

// KeyFor folds a display name into the stable game identity used by rounds
// and votes. Names are unique per session, case-insensitively.
func KeyFor(name string) round.PlayerKey {
	return round.PlayerKey(strings.ToLower(strings.TrimSpace(name)))
}

type Player struct {
	Key       round.PlayerKey
	Name      string
	Conn      ConnID
	AccountID string
	Connected bool
}

// Actor identifies the requester of an operation: by connection id on the
// socket path, by display name on the stateless path.
type Actor struct {
	Conn ConnID
	Name string
}

// StateView is everything one player needs to resume exactly where they left
// off: phase, their own assignment (or the host's observer view), and any
// cached reveal.
type StateView struct {
	GameID     string             `json:"gameId"`
	Code       string             `json:"code"`
	Custom     bool               `json:"custom"`
	Phase      Phase              `json:"phase"`
	VotePhase  VotePhase          `json:"votePhase"`
	NeedsSetup bool               `json:"needsSetup"`
	HostName   string             `json:"hostName"`
	IsHost     bool               `json:"isHost"`
	Players    []types.PlayerInfo `json:"players"`
	TurnOrder  []string           `json:"turnOrder,omitempty"`
	Assignment *types.WordPayload `json:"assignment,omitempty"`
	HostRound  *types.HostRound   `json:"hostRound,omitempty"`
	Voted      int                `json:"voted"`
	Required   int                `json:"required"`
	Reveal     *vote.Result       `json:"reveal,omitempty"`
}

type Config struct {
	GameID  string
	Code    string
	Custom  bool
	Bank    *wordbank.Bank
	Store   account.Store
	Log     *zap.Logger
	Rand    *rand.Rand
	Grace   time.Duration // lobby disconnect grace before removal
	OnEmpty func(*Session)
}

type Session struct {
	cfg    Config
	inbox  chan msg
	ctx    context.Context
	cancel context.CancelFunc

	// Everything below is owned by the loop goroutine.
	phase       Phase
	votePhase   VotePhase
	players     []*Player
	hostKey     round.PlayerKey
	current     *round.Round
	history     []*round.Round
	ballots     map[round.PlayerKey]vote.Ballot
	lastReveal  *vote.Result
	needsSetup  bool
	clients     map[ConnID]chan types.ServerMessage
	graceTimers map[round.PlayerKey]*time.Timer
}

// New seats the host as player 0 and starts the session loop.
func New(parent context.Context, cfg Config, hostName string, hostConn ConnID, hostAccountID string) *Session {
	ctx, cancel := context.WithCancel(parent)
	host := &Player{
		Key:       KeyFor(hostName),
		Name:      strings.TrimSpace(hostName),
		Conn:      hostConn,
		AccountID: hostAccountID,
		Connected: true,
	}
	s := &Session{
		cfg:         cfg,
		inbox:       make(chan msg, 64),
		ctx:         ctx,
		cancel:      cancel,
		phase:       PhaseLobby,
		votePhase:   VoteIdle,
		players:     []*Player{host},
		hostKey:     host.Key,
		ballots:     make(map[round.PlayerKey]vote.Ballot),
		clients:     make(map[ConnID]chan types.ServerMessage),
		graceTimers: make(map[round.PlayerKey]*time.Timer),
	}
	go s.loop()
	return s
}

func (s *Session) GameID() string { return s.cfg.GameID }
func (s *Session) Code() string   { return s.cfg.Code }
func (s *Session) Custom() bool   { return s.cfg.Custom }

type msg interface{ isMsg() }

type reply[T any] chan result[T]

type result[T any] struct {
	val T
	err error
}

type joinMsg struct {
	conn      ConnID
	name      string
	accountID string
	reply     reply[*StateView]
}

type rejoinMsg struct {
	conn       ConnID
	name       string
	claimsHost bool
	reply      reply[*StateView]
}

type startMsg struct {
	actor Actor
	reply reply[struct{}]
}

type setupRoundMsg struct {
	actor    Actor
	category string
	word     string
	reply    reply[struct{}]
}

type newRoundMsg struct {
	actor Actor
	auto  bool // custom host opts into playing this round
	reply reply[struct{}]
}

type startVoteMsg struct {
	actor Actor
	reply reply[struct{}]
}

type submitVoteMsg struct {
	actor      Actor
	accused    []string
	noImposter bool
	reply      reply[struct{}]
}

type revealMsg struct {
	actor Actor
	reply reply[*vote.Result]
}

type stateMsg struct {
	actor Actor
	reply reply[*StateView]
}

type subscribeMsg struct {
	conn   ConnID
	outbox chan types.ServerMessage
}

type unsubscribeMsg struct{ conn ConnID }

type disconnectMsg struct{ conn ConnID }

type removeMsg struct{ key round.PlayerKey }

type shutdownMsg struct{}

func (joinMsg) isMsg()        {}
func (rejoinMsg) isMsg()      {}
func (startMsg) isMsg()       {}
func (setupRoundMsg) isMsg()  {}
func (newRoundMsg) isMsg()    {}
func (startVoteMsg) isMsg()   {}
func (submitVoteMsg) isMsg()  {}
func (revealMsg) isMsg()      {}
func (stateMsg) isMsg()       {}
func (subscribeMsg) isMsg()   {}
func (unsubscribeMsg) isMsg() {}
func (disconnectMsg) isMsg()  {}
func (removeMsg) isMsg()      {}
func (shutdownMsg) isMsg()    {}

func ask[T any](s *Session, m msg, r reply[T]) (T, error) {
	var zero T
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
		return zero, ErrSessionClosed
	}
	select {
	case res := <-r:
		return res.val, res.err
	case <-s.ctx.Done():
		return zero, ErrSessionClosed
	}
}

func (s *Session) tell(m msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

// Join adds a new player while the session is still in the lobby.
func (s *Session) Join(conn ConnID, name, accountID string) (*StateView, error) {
	r := make(reply[*StateView], 1)
	return ask(s, joinMsg{conn: conn, name: name, accountID: accountID, reply: r}, r)
}

// Rejoin reattaches an existing player under a fresh connection id and
// returns the state they need to resume.
func (s *Session) Rejoin(conn ConnID, name string, claimsHost bool) (*StateView, error) {
	r := make(reply[*StateView], 1)
	return ask(s, rejoinMsg{conn: conn, name: name, claimsHost: claimsHost, reply: r}, r)
}

// Start begins the game. Standard mode deals the first round immediately;
// custom mode parks in the host-setup step instead.
func (s *Session) Start(actor Actor) error {
	r := make(reply[struct{}], 1)
	_, err := ask(s, startMsg{actor: actor, reply: r}, r)
	return err
}

// SetupCustomRound deals a host-chosen category and word to everyone but the
// host.
func (s *Session) SetupCustomRound(actor Actor, category, word string) error {
	r := make(reply[struct{}], 1)
	_, err := ask(s, setupRoundMsg{actor: actor, category: category, word: word, reply: r}, r)
	return err
}

// NewRound deals the next round; custom games return to the host-setup step.
func (s *Session) NewRound(actor Actor) error {
	r := make(reply[struct{}], 1)
	_, err := ask(s, newRoundMsg{actor: actor, reply: r}, r)
	return err
}

// AutoRound is the custom host's explicit opt-in to an auto-generated round
// where they play too.
func (s *Session) AutoRound(actor Actor) error {
	r := make(reply[struct{}], 1)
	_, err := ask(s, newRoundMsg{actor: actor, auto: true, reply: r}, r)
	return err
}

func (s *Session) StartVote(actor Actor) error {
	r := make(reply[struct{}], 1)
	_, err := ask(s, startVoteMsg{actor: actor, reply: r}, r)
	return err
}

// SubmitVote records a ballot, replacing any previous one from the same
// player regardless of which transport carried it.
func (s *Session) SubmitVote(actor Actor, accused []string, noImposter bool) error {
	r := make(reply[struct{}], 1)
	_, err := ask(s, submitVoteMsg{actor: actor, accused: accused, noImposter: noImposter, reply: r}, r)
	return err
}

// Reveal tallies the vote. A reveal on an already-revealed phase replays the
// cached result without recomputing or re-recording stats.
func (s *Session) Reveal(actor Actor) (*vote.Result, error) {
	r := make(reply[*vote.Result], 1)
	return ask(s, revealMsg{actor: actor, reply: r}, r)
}

// State is the read-only resume snapshot for one player.
func (s *Session) State(actor Actor) (*StateView, error) {
	r := make(reply[*StateView], 1)
	return ask(s, stateMsg{actor: actor, reply: r}, r)
}

// Subscribe registers an outbox for fanned-out server messages.
func (s *Session) Subscribe(conn ConnID, outbox chan types.ServerMessage) {
	s.tell(subscribeMsg{conn: conn, outbox: outbox})
}

func (s *Session) Unsubscribe(conn ConnID) {
	s.tell(unsubscribeMsg{conn: conn})
}

// Disconnect marks the connection's player as gone. Lobby players are removed
// after the grace delay; in-game slots persist for reconnection.
func (s *Session) Disconnect(conn ConnID) {
	s.tell(disconnectMsg{conn: conn})
}

func (s *Session) Shutdown() {
	s.tell(shutdownMsg{})
}
