package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imposterparty/imposter-backend/internal/round"
	"github.com/imposterparty/imposter-backend/internal/types"
	"github.com/imposterparty/imposter-backend/internal/vote"
)

const historyLimit = 10

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case joinMsg:
				view, err := s.handleJoin(msg)
				msg.reply <- result[*StateView]{val: view, err: err}

			case rejoinMsg:
				view, err := s.handleRejoin(msg)
				msg.reply <- result[*StateView]{val: view, err: err}

			case startMsg:
				msg.reply <- result[struct{}]{err: s.handleStart(msg.actor)}

			case setupRoundMsg:
				msg.reply <- result[struct{}]{err: s.handleSetupRound(msg)}

			case newRoundMsg:
				msg.reply <- result[struct{}]{err: s.handleNewRound(msg.actor, msg.auto)}

			case startVoteMsg:
				msg.reply <- result[struct{}]{err: s.handleStartVote(msg.actor)}

			case submitVoteMsg:
				msg.reply <- result[struct{}]{err: s.handleSubmitVote(msg)}

			case revealMsg:
				res, err := s.handleReveal(msg.actor)
				msg.reply <- result[*vote.Result]{val: res, err: err}

			case stateMsg:
				p, err := s.resolve(msg.actor)
				if err != nil {
					msg.reply <- result[*StateView]{err: err}
					break
				}
				msg.reply <- result[*StateView]{val: s.stateView(p)}

			case subscribeMsg:
				s.clients[msg.conn] = msg.outbox

			case unsubscribeMsg:
				delete(s.clients, msg.conn)

			case disconnectMsg:
				s.handleDisconnect(msg.conn)

			case removeMsg:
				s.handleRemove(msg.key)

			case shutdownMsg:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) shutdown() {
	for _, t := range s.graceTimers {
		t.Stop()
	}
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) resolve(a Actor) (*Player, error) {
	if a.Conn != "" {
		for _, p := range s.players {
			if p.Conn == a.Conn {
				return p, nil
			}
		}
		return nil, ErrPlayerNotFound
	}
	key := KeyFor(a.Name)
	for _, p := range s.players {
		if p.Key == key {
			return p, nil
		}
	}
	return nil, ErrPlayerNotFound
}

func (s *Session) requireHost(a Actor) (*Player, error) {
	p, err := s.resolve(a)
	if err != nil {
		return nil, err
	}
	if p.Key != s.hostKey {
		return nil, ErrNotHost
	}
	return p, nil
}

func (s *Session) handleJoin(m joinMsg) (*StateView, error) {
	if s.phase != PhaseLobby {
		return nil, ErrGameAlreadyStarted
	}
	key := KeyFor(m.name)
	for _, p := range s.players {
		if p.Key == key {
			return nil, ErrNameTaken
		}
	}
	if len(s.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	p := &Player{Key: key, Name: m.name, Conn: m.conn, AccountID: m.accountID, Connected: true}
	s.players = append(s.players, p)
	s.broadcast(types.ServerMessage{Type: "player-joined", Data: types.RoomUpdate{Players: s.playerInfos()}})
	return s.stateView(p), nil
}

func (s *Session) handleRejoin(m rejoinMsg) (*StateView, error) {
	key := KeyFor(m.name)
	var p *Player
	for _, cand := range s.players {
		if cand.Key == key {
			p = cand
			break
		}
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if t, ok := s.graceTimers[key]; ok {
		t.Stop()
		delete(s.graceTimers, key)
	}
	delete(s.clients, p.Conn)
	p.Conn = m.conn
	p.Connected = true
	// Host status follows the session's record; a stale host claim from the
	// client does not reinstate a transferred role.
	s.broadcast(types.ServerMessage{Type: "player-joined", Data: types.RoomUpdate{Players: s.playerInfos()}})
	return s.stateView(p), nil
}

func (s *Session) handleStart(a Actor) error {
	if _, err := s.requireHost(a); err != nil {
		return err
	}
	if s.phase != PhaseLobby {
		return ErrGameAlreadyStarted
	}
	if s.cfg.Custom {
		if len(s.players) < MinCustomPlayers {
			return ErrTooFewPlayers
		}
		s.phase = PhasePlaying
		s.resetToSetup()
		s.broadcast(types.ServerMessage{Type: "game-started", Data: types.RoundStarted{Players: s.playerInfos()}})
		return nil
	}
	if len(s.players) < MinStandardPlayers {
		return ErrTooFewPlayers
	}
	s.phase = PhasePlaying
	if err := s.startRound(s.allKeys(), nil); err != nil {
		s.phase = PhaseLobby
		return err
	}
	return nil
}

func (s *Session) handleSetupRound(m setupRoundMsg) error {
	if _, err := s.requireHost(m.actor); err != nil {
		return err
	}
	if !s.cfg.Custom || s.phase != PhasePlaying {
		return ErrInvalidRoundSetup
	}
	if !s.cfg.Bank.Contains(m.category, m.word) {
		return ErrInvalidRoundSetup
	}
	keys := make([]round.PlayerKey, 0, len(s.players)-1)
	for _, p := range s.players {
		if p.Key != s.hostKey {
			keys = append(keys, p.Key)
		}
	}
	if len(keys) == 0 {
		return ErrTooFewPlayers
	}
	return s.startRound(keys, &round.Custom{Category: m.category, Word: m.word})
}

func (s *Session) handleNewRound(a Actor, auto bool) error {
	if _, err := s.requireHost(a); err != nil {
		return err
	}
	if s.phase != PhasePlaying {
		return ErrNoActiveRound
	}
	if s.cfg.Custom && !auto {
		s.resetToSetup()
		s.broadcast(types.ServerMessage{Type: "round-reset"})
		return nil
	}
	if auto && len(s.players) < MinStandardPlayers {
		return ErrTooFewPlayers
	}
	return s.startRound(s.allKeys(), nil)
}

func (s *Session) handleStartVote(a Actor) error {
	if _, err := s.requireHost(a); err != nil {
		return err
	}
	if s.current == nil {
		return ErrNoActiveRound
	}
	switch s.votePhase {
	case VoteOpen:
		// Retried start-vote over the fallback transport is a no-op.
		return nil
	case VoteRevealed:
		return ErrVoteNotOpen
	}
	s.votePhase = VoteOpen
	s.ballots = make(map[round.PlayerKey]vote.Ballot)
	s.broadcast(types.ServerMessage{Type: "vote-started", Data: types.VoteUpdate{Voted: 0, Required: len(s.current.Assignments)}})
	return nil
}

func (s *Session) handleSubmitVote(m submitVoteMsg) error {
	if s.votePhase != VoteOpen {
		return ErrVoteNotOpen
	}
	p, err := s.resolve(m.actor)
	if err != nil {
		return err
	}
	if _, playing := s.current.Assignments[p.Key]; !playing {
		return ErrNotAllowedToVote
	}
	ballot := vote.Ballot{NoImposter: m.noImposter}
	if !m.noImposter {
		for _, name := range m.accused {
			accused, err := s.resolve(Actor{Name: name})
			if err != nil {
				return err
			}
			ballot.Accused = append(ballot.Accused, accused.Key)
		}
	}
	s.ballots[p.Key] = ballot
	s.broadcast(types.ServerMessage{Type: "vote-update", Data: types.VoteUpdate{Voted: len(s.ballots), Required: len(s.current.Assignments)}})
	return nil
}

func (s *Session) handleReveal(a Actor) (*vote.Result, error) {
	if _, err := s.requireHost(a); err != nil {
		return nil, err
	}
	if s.votePhase == VoteRevealed {
		return s.lastReveal, nil
	}
	if s.votePhase != VoteOpen || s.current == nil {
		return nil, ErrVoteNotOpen
	}
	roster := make(map[round.PlayerKey]string, len(s.players))
	for _, p := range s.players {
		roster[p.Key] = p.Name
	}
	res, err := vote.Tally(s.current, s.ballots, len(s.current.Assignments), roster)
	if err != nil {
		return nil, err
	}
	s.recordResults(s.current, res)
	s.lastReveal = res
	s.votePhase = VoteRevealed
	s.broadcast(types.ServerMessage{Type: "imposter-revealed", Data: res})
	return res, nil
}

// recordResults reports one outcome per playing player with a linked account.
// Store calls run off-loop; a slow or failing store never delays the reveal.
func (s *Session) recordResults(r *round.Round, res *vote.Result) {
	type entry struct {
		accountID   string
		wasImposter bool
		won         bool
		voteCorrect bool
	}
	var entries []entry
	for _, p := range s.players {
		if p.AccountID == "" {
			continue
		}
		if _, playing := r.Assignments[p.Key]; !playing {
			continue
		}
		wasImposter := r.IsImposter(p.Key)
		won := res.CrewWon != wasImposter
		entries = append(entries, entry{
			accountID:   p.AccountID,
			wasImposter: wasImposter,
			won:         won,
			voteCorrect: vote.Correct(r, s.ballots[p.Key]),
		})
	}
	if len(entries) == 0 || s.cfg.Store == nil {
		return
	}
	log := s.cfg.Log
	store := s.cfg.Store
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, e := range entries {
			if err := store.RecordRoundResult(ctx, e.accountID, e.wasImposter, e.won, e.voteCorrect); err != nil {
				log.Warn("failed to record round result",
					zap.String("accountId", e.accountID), zap.Error(err))
			}
		}
	}()
}

func (s *Session) handleDisconnect(conn ConnID) {
	if conn == "" {
		return
	}
	var p *Player
	for _, cand := range s.players {
		if cand.Conn == conn {
			p = cand
			break
		}
	}
	if p == nil {
		return
	}
	p.Connected = false
	delete(s.clients, conn)

	if s.phase == PhasePlaying {
		// Slots persist in-game so the player can resume; only the host role
		// moves on.
		if p.Key == s.hostKey {
			s.transferHost(p.Key)
		}
		s.broadcast(types.ServerMessage{Type: "player-left", Data: types.RoomUpdate{Players: s.playerInfos()}})
		return
	}

	key := p.Key
	if t, ok := s.graceTimers[key]; ok {
		t.Stop()
	}
	s.graceTimers[key] = time.AfterFunc(s.cfg.Grace, func() {
		s.tell(removeMsg{key: key})
	})
}

func (s *Session) handleRemove(key round.PlayerKey) {
	delete(s.graceTimers, key)
	if s.phase != PhaseLobby {
		return
	}
	idx := -1
	for i, p := range s.players {
		if p.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 || s.players[idx].Connected {
		return
	}
	s.players = append(s.players[:idx], s.players[idx+1:]...)
	if len(s.players) == 0 {
		if s.cfg.OnEmpty != nil {
			s.cfg.OnEmpty(s)
		}
		s.shutdown()
		return
	}
	if key == s.hostKey {
		s.transferHost(key)
	}
	s.broadcast(types.ServerMessage{Type: "player-left", Data: types.RoomUpdate{Players: s.playerInfos()}})
}

// transferHost hands the role to the next player by join order, preferring
// someone still connected.
func (s *Session) transferHost(old round.PlayerKey) {
	var next *Player
	for _, p := range s.players {
		if p.Key == old {
			continue
		}
		if next == nil {
			next = p
		}
		if p.Connected {
			next = p
			break
		}
	}
	if next == nil {
		return
	}
	s.hostKey = next.Key
	s.broadcast(types.ServerMessage{Type: "new-host", Data: types.NewHost{HostName: next.Name}})
}

func (s *Session) resetToSetup() {
	if s.current != nil {
		s.pushHistory(s.current)
		s.current = nil
	}
	s.ballots = make(map[round.PlayerKey]vote.Ballot)
	s.votePhase = VoteIdle
	s.lastReveal = nil
	s.needsSetup = true
	s.sendToKey(s.hostKey, types.ServerMessage{Type: "needs-setup"})
}

func (s *Session) startRound(keys []round.PlayerKey, custom *round.Custom) error {
	r, err := round.Generate(s.cfg.Rand, s.cfg.Bank, keys, s.history, custom)
	if err != nil {
		return err
	}
	if s.current != nil {
		s.pushHistory(s.current)
	}
	s.current = r
	s.ballots = make(map[round.PlayerKey]vote.Ballot)
	s.votePhase = VoteIdle
	s.lastReveal = nil
	s.needsSetup = false

	total := len(r.TurnOrder)
	for key, a := range r.Assignments {
		s.sendToKey(key, types.ServerMessage{Type: "your-word", Data: wordPayload(a, total)})
	}
	if _, hostPlays := r.Assignments[s.hostKey]; !hostPlays {
		s.sendToKey(s.hostKey, types.ServerMessage{Type: "host-round", Data: types.HostRound{Category: r.Category, Word: r.Word}})
	}
	s.broadcast(types.ServerMessage{Type: "round-started", Data: types.RoundStarted{
		Players:   s.playerInfos(),
		TurnOrder: s.names(r.TurnOrder),
	}})
	return nil
}

func (s *Session) pushHistory(r *round.Round) {
	s.history = append(s.history, r)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

func (s *Session) stateView(p *Player) *StateView {
	view := &StateView{
		GameID:     s.cfg.GameID,
		Code:       s.cfg.Code,
		Custom:     s.cfg.Custom,
		Phase:      s.phase,
		VotePhase:  s.votePhase,
		NeedsSetup: s.needsSetup,
		IsHost:     p.Key == s.hostKey,
		Players:    s.playerInfos(),
		Voted:      len(s.ballots),
	}
	for _, cand := range s.players {
		if cand.Key == s.hostKey {
			view.HostName = cand.Name
		}
	}
	if s.current != nil {
		view.TurnOrder = s.names(s.current.TurnOrder)
		view.Required = len(s.current.Assignments)
		if a, playing := s.current.Assignments[p.Key]; playing {
			wp := wordPayload(a, len(s.current.TurnOrder))
			view.Assignment = &wp
		} else if p.Key == s.hostKey {
			view.HostRound = &types.HostRound{Category: s.current.Category, Word: s.current.Word}
		}
	}
	if s.votePhase == VoteRevealed {
		view.Reveal = s.lastReveal
	}
	return view
}

func (s *Session) allKeys() []round.PlayerKey {
	keys := make([]round.PlayerKey, len(s.players))
	for i, p := range s.players {
		keys[i] = p.Key
	}
	return keys
}

func (s *Session) playerInfos() []types.PlayerInfo {
	infos := make([]types.PlayerInfo, len(s.players))
	for i, p := range s.players {
		infos[i] = types.PlayerInfo{Name: p.Name, IsHost: p.Key == s.hostKey, Connected: p.Connected}
	}
	return infos
}

func (s *Session) names(keys []round.PlayerKey) []string {
	names := make([]string, len(keys))
	for i, key := range keys {
		for _, p := range s.players {
			if p.Key == key {
				names[i] = p.Name
				break
			}
		}
	}
	return names
}

func (s *Session) broadcast(m types.ServerMessage) {
	for id, ch := range s.clients {
		select {
		case ch <- m:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}

func (s *Session) sendToKey(key round.PlayerKey, m types.ServerMessage) {
	for _, p := range s.players {
		if p.Key != key {
			continue
		}
		if ch, ok := s.clients[p.Conn]; ok {
			select {
			case ch <- m:
			default:
				close(ch)
				delete(s.clients, p.Conn)
			}
		}
		return
	}
}

func wordPayload(a round.Assignment, total int) types.WordPayload {
	wp := types.WordPayload{
		IsImposter:    a.IsImposter,
		TurnOrder:     a.TurnPosition,
		TurnOrderText: a.TurnText,
		TotalPlayers:  total,
		RoundVariant:  string(a.Variant),
	}
	switch {
	case a.IsImposter:
		wp.Word = fmt.Sprintf("%s\n\nIMPOSTER", a.Category)
	case a.Variant == round.VariantNoImposter:
		wp.Word = fmt.Sprintf("%s\n\n(No imposter this round!)", a.Word)
	default:
		wp.Word = a.Word
	}
	return wp
}
