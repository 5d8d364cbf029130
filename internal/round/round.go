package round

import "errors"

var ErrNoPlayers = errors.New("round needs at least one player")

// PlayerKey is the stable game identity of a player: the display name folded
// to lower case. Transport connection ids never appear in round data, so a
// reconnect cannot invalidate a round.
type PlayerKey string

type Variant string

const (
	VariantNormal       Variant = "normal"
	VariantNoImposter   Variant = "no_imposter"
	VariantTwoImposters Variant = "two_imposters"
)

// Assignment is what a single player is told at round start.
type Assignment struct {
	Word         string // empty for imposters
	Category     string // empty for non-imposters
	IsImposter   bool
	TurnPosition int    // 1-based
	TurnText     string // "You're 3rd"
	Variant      Variant
}

// Round is created once per round start and immutable afterwards. The
// superseded round is pushed into the session's bounded history.
type Round struct {
	Category    string
	Word        string
	Variant     Variant
	Imposters   []PlayerKey
	TurnOrder   []PlayerKey
	Assignments map[PlayerKey]Assignment
}

// IsImposter reports whether key was assigned the imposter role this round.
func (r *Round) IsImposter(key PlayerKey) bool {
	for _, k := range r.Imposters {
		if k == key {
			return true
		}
	}
	return false
}
