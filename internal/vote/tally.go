package vote

import (
	"errors"
	"sort"

	"github.com/imposterparty/imposter-backend/internal/round"
)

var ErrVotesIncomplete = errors.New("not every required player has voted")

// Ballot is one player's vote: either a set of accused players or the
// explicit "no imposter" call. A re-submitted ballot replaces the previous
// one wholesale; that last-write-wins rule lives in the session, which keys
// ballots by stable player identity.
type Ballot struct {
	Accused    []round.PlayerKey
	NoImposter bool
}

// Result is computed once per reveal and cached on the session so a retried
// or late reveal request replays the identical outcome.
type Result struct {
	ImposterKeys          []round.PlayerKey `json:"imposterKeys"`
	ImposterNames         []string          `json:"imposterNames"`
	EjectedKey            round.PlayerKey   `json:"ejectedKey,omitempty"`
	EjectedName           string            `json:"ejectedName,omitempty"`
	WasTie                bool              `json:"wasTie"`
	EjectedWasImposter    bool              `json:"ejectedWasImposter"`
	CrewWon               bool              `json:"teamWon"`
	SurvivingImposterName string            `json:"survivingImposterName,omitempty"`
	Category              string            `json:"category"`
	Word                  string            `json:"word"`
	NoImposterRound       bool              `json:"noImposterRound"`
}

// Tally computes the reveal outcome. roster maps player keys to their display
// names as they are right now, so renames and reconnects between round start
// and reveal show up correctly. required is how many distinct voters must
// have cast a ballot before a reveal is allowed.
func Tally(r *round.Round, ballots map[round.PlayerKey]Ballot, required int, roster map[round.PlayerKey]string) (*Result, error) {
	if len(ballots) < required {
		return nil, ErrVotesIncomplete
	}

	// One vote per accused name per ballot. The no-imposter sentinel adds
	// nothing to any candidate.
	counts := make(map[round.PlayerKey]int)
	for _, b := range ballots {
		if b.NoImposter {
			continue
		}
		for _, accused := range b.Accused {
			counts[accused]++
		}
	}

	maxVotes := 0
	for _, c := range counts {
		if c > maxVotes {
			maxVotes = c
		}
	}
	var top []round.PlayerKey
	if maxVotes > 0 {
		for key, c := range counts {
			if c == maxVotes {
				top = append(top, key)
			}
		}
		sort.Slice(top, func(i, j int) bool { return top[i] < top[j] })
	}

	res := &Result{
		ImposterKeys:    r.Imposters,
		ImposterNames:   resolveNames(r.Imposters, roster),
		Category:        r.Category,
		Word:            r.Word,
		NoImposterRound: r.Variant == round.VariantNoImposter,
		WasTie:          len(top) > 1,
	}
	if len(top) == 1 {
		res.EjectedKey = top[0]
		res.EjectedName = roster[top[0]]
		res.EjectedWasImposter = r.IsImposter(top[0])
	}

	switch r.Variant {
	case round.VariantNoImposter:
		res.CrewWon = true

	case round.VariantTwoImposters:
		// Crew needs both imposters at the top of the tally in the same
		// reveal; catching one is a win for the survivor.
		caught := 0
		var surviving round.PlayerKey
		for _, imp := range r.Imposters {
			if contains(top, imp) {
				caught++
			} else {
				surviving = imp
			}
		}
		res.CrewWon = caught == len(r.Imposters)
		if caught == 1 {
			res.SurvivingImposterName = roster[surviving]
		}

	default:
		// A tie that includes the imposter counts as a catch: the crew wins
		// even though no single player is reported ejected.
		for _, key := range top {
			if r.IsImposter(key) {
				res.CrewWon = true
				break
			}
		}
	}

	return res, nil
}

// Correct reports whether a ballot called the round right: every imposter
// named, or the no-imposter sentinel on an imposterless round.
func Correct(r *round.Round, b Ballot) bool {
	if r.Variant == round.VariantNoImposter {
		return b.NoImposter
	}
	if b.NoImposter {
		return false
	}
	for _, imp := range r.Imposters {
		if !contains(b.Accused, imp) {
			return false
		}
	}
	return true
}

func resolveNames(keys []round.PlayerKey, roster map[round.PlayerKey]string) []string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, roster[k])
	}
	return names
}

func contains(keys []round.PlayerKey, key round.PlayerKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
