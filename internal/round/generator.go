package round

import (
	"fmt"
	"math/rand"

	"github.com/imposterparty/imposter-backend/internal/wordbank"
)

// Variant roll thresholds: 5% no imposter, 5% two imposters, 90% normal.
const (
	noImposterBelow   = 0.05
	twoImpostersBelow = 0.10
	imposterFirstOdds = 0.10
)

// Rotation window: categories and words are not repeated within the last
// two rounds unless nothing else is left.
const rotationWindow = 2

// Custom carries a host-supplied category/word pair. Validation against the
// word bank is the caller's job.
type Custom struct {
	Category string
	Word     string
}

// Generate produces a new round for the given players. history is the most
// recent rounds, newest last, and drives both the category/word rotation and
// the imposter fairness restriction.
func Generate(rng *rand.Rand, bank *wordbank.Bank, players []PlayerKey, history []*Round, custom *Custom) (*Round, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}

	var category, word string
	if custom != nil {
		category, word = custom.Category, custom.Word
	} else {
		category = pickCategory(rng, bank, history)
		word = pickWord(rng, bank, category, history)
	}

	variant := VariantNormal
	var imposters []PlayerKey
	switch roll := rng.Float64(); {
	case roll < noImposterBelow:
		variant = VariantNoImposter
	case roll < twoImpostersBelow && len(players) >= 2:
		variant = VariantTwoImposters
		imposters = pickTwoImposters(rng, players, history)
	default:
		imposters = []PlayerKey{pickImposter(rng, players, history, nil)}
	}

	turnOrder := shuffled(rng, players)
	if variant == VariantNormal && rng.Float64() < imposterFirstOdds {
		turnOrder = imposterFirst(rng, players, imposters[0])
	}

	assignments := make(map[PlayerKey]Assignment, len(players))
	for i, key := range turnOrder {
		pos := i + 1
		a := Assignment{
			IsImposter:   contains(imposters, key),
			TurnPosition: pos,
			TurnText:     fmt.Sprintf("You're %s", Ordinal(pos)),
			Variant:      variant,
		}
		if a.IsImposter {
			a.Category = category
		} else {
			a.Word = word
		}
		assignments[key] = a
	}

	return &Round{
		Category:    category,
		Word:        word,
		Variant:     variant,
		Imposters:   imposters,
		TurnOrder:   turnOrder,
		Assignments: assignments,
	}, nil
}

func pickCategory(rng *rand.Rand, bank *wordbank.Bank, history []*Round) string {
	recent := make(map[string]bool, rotationWindow)
	for _, r := range lastN(history, rotationWindow) {
		recent[r.Category] = true
	}
	fresh := make([]string, 0, len(bank.Categories()))
	for _, name := range bank.Categories() {
		if !recent[name] {
			fresh = append(fresh, name)
		}
	}
	if len(fresh) == 0 {
		fresh = bank.Categories()
	}
	return fresh[rng.Intn(len(fresh))]
}

func pickWord(rng *rand.Rand, bank *wordbank.Bank, category string, history []*Round) string {
	words, _ := bank.Words(category)
	recent := make(map[string]bool, rotationWindow)
	for _, r := range lastN(history, rotationWindow) {
		if r.Category == category {
			recent[r.Word] = true
		}
	}
	fresh := make([]string, 0, len(words))
	for _, w := range words {
		if !recent[w] {
			fresh = append(fresh, w)
		}
	}
	if len(fresh) == 0 {
		fresh = words
	}
	return fresh[rng.Intn(len(fresh))]
}

// pickImposter draws uniformly from the players tied for the fewest imposter
// turns in recent history. A player is never picked again while someone else
// has been imposter less often, but repeats are allowed once everyone is tied.
func pickImposter(rng *rand.Rand, players []PlayerKey, history []*Round, exclude []PlayerKey) PlayerKey {
	pool := lowCountPool(players, history, exclude)
	return pool[rng.Intn(len(pool))]
}

// pickTwoImposters guarantees two distinct picks by drawing one index and a
// second index shifted out of the first's position.
func pickTwoImposters(rng *rand.Rand, players []PlayerKey, history []*Round) []PlayerKey {
	pool := lowCountPool(players, history, nil)
	if len(pool) < 2 {
		pool = players
	}
	i := rng.Intn(len(pool))
	j := rng.Intn(len(pool) - 1)
	if j >= i {
		j++
	}
	return []PlayerKey{pool[i], pool[j]}
}

func lowCountPool(players []PlayerKey, history []*Round, exclude []PlayerKey) []PlayerKey {
	counts := make(map[PlayerKey]int, len(players))
	for _, r := range lastN(history, 10) {
		for _, k := range r.Imposters {
			counts[k]++
		}
	}
	min := -1
	for _, key := range players {
		if contains(exclude, key) {
			continue
		}
		if c := counts[key]; min < 0 || c < min {
			min = c
		}
	}
	pool := make([]PlayerKey, 0, len(players))
	for _, key := range players {
		if contains(exclude, key) {
			continue
		}
		if counts[key] == min {
			pool = append(pool, key)
		}
	}
	if len(pool) == 0 {
		pool = players
	}
	return pool
}

func shuffled(rng *rand.Rand, players []PlayerKey) []PlayerKey {
	order := make([]PlayerKey, len(players))
	copy(order, players)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

func imposterFirst(rng *rand.Rand, players []PlayerKey, imposter PlayerKey) []PlayerKey {
	rest := make([]PlayerKey, 0, len(players)-1)
	for _, key := range players {
		if key != imposter {
			rest = append(rest, key)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append([]PlayerKey{imposter}, rest...)
}

func lastN(history []*Round, n int) []*Round {
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

func contains(keys []PlayerKey, key PlayerKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Ordinal renders n with its English suffix: 1st, 2nd, 3rd, 4th, 11th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
