package vote

import (
	"errors"
	"testing"

	"github.com/imposterparty/imposter-backend/internal/round"
)

func normalRound(imposter round.PlayerKey, players ...round.PlayerKey) *round.Round {
	return testRound(round.VariantNormal, []round.PlayerKey{imposter}, players)
}

func testRound(variant round.Variant, imposters, players []round.PlayerKey) *round.Round {
	assignments := make(map[round.PlayerKey]round.Assignment, len(players))
	for i, p := range players {
		assignments[p] = round.Assignment{TurnPosition: i + 1, Variant: variant}
	}
	return &round.Round{
		Category:    "Animals",
		Word:        "giraffe",
		Variant:     variant,
		Imposters:   imposters,
		TurnOrder:   players,
		Assignments: assignments,
	}
}

func roster(players ...round.PlayerKey) map[round.PlayerKey]string {
	m := make(map[round.PlayerKey]string, len(players))
	for _, p := range players {
		m[p] = string(p)
	}
	return m
}

func accuse(keys ...round.PlayerKey) Ballot { return Ballot{Accused: keys} }

func TestTally_SingleMaxImposterEjected(t *testing.T) {
	r := normalRound("mallory", "alice", "bob", "carol", "mallory")
	ballots := map[round.PlayerKey]Ballot{
		"alice":   accuse("mallory"),
		"bob":     accuse("mallory"),
		"carol":   accuse("mallory"),
		"mallory": {NoImposter: true},
	}

	res, err := Tally(r, ballots, 4, roster("alice", "bob", "carol", "mallory"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.EjectedKey != "mallory" || res.EjectedName != "mallory" {
		t.Fatalf("want mallory ejected, got %q", res.EjectedKey)
	}
	if !res.EjectedWasImposter || !res.CrewWon || res.WasTie {
		t.Fatalf("want clean crew win, got %+v", res)
	}
}

func TestTally_TieIncludingImposterFavorsCrew(t *testing.T) {
	r := normalRound("mallory", "alice", "bob", "carol", "mallory")
	ballots := map[round.PlayerKey]Ballot{
		"alice":   accuse("mallory"),
		"bob":     accuse("alice"),
		"carol":   accuse("mallory"),
		"mallory": accuse("alice"),
	}

	res, err := Tally(r, ballots, 4, roster("alice", "bob", "carol", "mallory"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.WasTie {
		t.Fatalf("want tie, got %+v", res)
	}
	if res.EjectedKey != "" || res.EjectedName != "" {
		t.Fatalf("tie must report no single ejection, got %q", res.EjectedKey)
	}
	if !res.CrewWon {
		t.Fatalf("tie including the imposter must score for the crew")
	}
}

func TestTally_TieBetweenCrewOnly(t *testing.T) {
	r := normalRound("mallory", "alice", "bob", "carol", "mallory")
	ballots := map[round.PlayerKey]Ballot{
		"alice":   accuse("bob"),
		"bob":     accuse("alice"),
		"carol":   accuse("bob"),
		"mallory": accuse("alice"),
	}

	res, err := Tally(r, ballots, 4, roster("alice", "bob", "carol", "mallory"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.WasTie || res.CrewWon {
		t.Fatalf("crew-only tie must not score for the crew: %+v", res)
	}
}

func TestTally_NoPositiveVotesNobodyEjected(t *testing.T) {
	r := normalRound("mallory", "alice", "bob", "mallory")
	ballots := map[round.PlayerKey]Ballot{
		"alice":   {NoImposter: true},
		"bob":     {NoImposter: true},
		"mallory": {NoImposter: true},
	}

	res, err := Tally(r, ballots, 3, roster("alice", "bob", "mallory"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.EjectedKey != "" || res.WasTie || res.CrewWon {
		t.Fatalf("nobody should be ejected and the imposter walks: %+v", res)
	}
}

func TestTally_NoImposterRoundCrewAlwaysWins(t *testing.T) {
	r := testRound(round.VariantNoImposter, nil, []round.PlayerKey{"alice", "bob", "carol"})
	ballots := map[round.PlayerKey]Ballot{
		"alice": accuse("bob"),
		"bob":   accuse("alice"),
		"carol": accuse("alice"),
	}

	res, err := Tally(r, ballots, 3, roster("alice", "bob", "carol"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.CrewWon || !res.NoImposterRound {
		t.Fatalf("no-imposter round must be a crew win: %+v", res)
	}
	if res.EjectedKey != "alice" {
		t.Fatalf("ejection still reported for the record, got %q", res.EjectedKey)
	}
}

func TestTally_TwoImpostersPartialCatchLoses(t *testing.T) {
	players := []round.PlayerKey{"alice", "bob", "carol", "dave", "eve"}
	r := testRound(round.VariantTwoImposters, []round.PlayerKey{"dave", "eve"}, players)
	ballots := map[round.PlayerKey]Ballot{
		"alice": accuse("dave"),
		"bob":   accuse("dave"),
		"carol": accuse("dave"),
		"dave":  accuse("alice"),
		"eve":   accuse("alice"),
	}

	res, err := Tally(r, ballots, 5, roster(players...))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.CrewWon {
		t.Fatalf("catching one of two imposters must not be a crew win")
	}
	if res.SurvivingImposterName != "eve" {
		t.Fatalf("surviving imposter must be named, got %q", res.SurvivingImposterName)
	}
	if res.EjectedKey != "dave" || !res.EjectedWasImposter {
		t.Fatalf("dave should be the single ejection: %+v", res)
	}
}

func TestTally_TwoImpostersBothCaughtWins(t *testing.T) {
	players := []round.PlayerKey{"alice", "bob", "carol", "dave", "eve"}
	r := testRound(round.VariantTwoImposters, []round.PlayerKey{"dave", "eve"}, players)
	ballots := map[round.PlayerKey]Ballot{
		"alice": accuse("dave", "eve"),
		"bob":   accuse("dave", "eve"),
		"carol": accuse("dave", "eve"),
		"dave":  accuse("alice"),
		"eve":   accuse("bob"),
	}

	res, err := Tally(r, ballots, 5, roster(players...))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.CrewWon {
		t.Fatalf("both imposters at max must be a crew win: %+v", res)
	}
	if res.SurvivingImposterName != "" {
		t.Fatalf("no survivor when both are caught, got %q", res.SurvivingImposterName)
	}
	if !res.WasTie {
		t.Fatalf("two candidates at max is a tie for reporting purposes")
	}
}

func TestTally_MultiAccusationCountsOnePerCandidate(t *testing.T) {
	r := normalRound("mallory", "alice", "bob", "carol", "mallory")
	ballots := map[round.PlayerKey]Ballot{
		"alice":   accuse("mallory", "bob"),
		"bob":     accuse("mallory"),
		"carol":   {NoImposter: true},
		"mallory": {NoImposter: true},
	}

	res, err := Tally(r, ballots, 4, roster("alice", "bob", "carol", "mallory"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// mallory: 2, bob: 1 - a multi-accusation is one whole vote per name.
	if res.EjectedKey != "mallory" || res.WasTie {
		t.Fatalf("want mallory ejected cleanly, got %+v", res)
	}
}

func TestTally_RefusesIncompleteVotes(t *testing.T) {
	r := normalRound("mallory", "alice", "bob", "carol", "mallory")
	ballots := map[round.PlayerKey]Ballot{
		"alice": accuse("mallory"),
	}

	_, err := Tally(r, ballots, 4, roster("alice", "bob", "carol", "mallory"))
	if !errors.Is(err, ErrVotesIncomplete) {
		t.Fatalf("want ErrVotesIncomplete, got %v", err)
	}
}

func TestTally_NamesResolvedAtRevealTime(t *testing.T) {
	r := normalRound("mallory", "alice", "bob", "carol", "mallory")
	ballots := map[round.PlayerKey]Ballot{
		"alice":   accuse("mallory"),
		"bob":     accuse("mallory"),
		"carol":   accuse("mallory"),
		"mallory": accuse("alice"),
	}
	current := roster("alice", "bob", "carol", "mallory")
	current["mallory"] = "Mallory The Great"

	res, err := Tally(r, ballots, 4, current)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.EjectedName != "Mallory The Great" {
		t.Fatalf("names must come from the live roster, got %q", res.EjectedName)
	}
	if res.ImposterNames[0] != "Mallory The Great" {
		t.Fatalf("imposter names must come from the live roster, got %v", res.ImposterNames)
	}
}

func TestCorrect(t *testing.T) {
	two := testRound(round.VariantTwoImposters, []round.PlayerKey{"d", "e"}, []round.PlayerKey{"a", "b", "c", "d", "e"})
	none := testRound(round.VariantNoImposter, nil, []round.PlayerKey{"a", "b", "c"})
	one := normalRound("m", "a", "b", "m")

	cases := []struct {
		name   string
		r      *round.Round
		ballot Ballot
		want   bool
	}{
		{"named the imposter", one, accuse("m"), true},
		{"named someone else", one, accuse("a"), false},
		{"no-imposter call on a normal round", one, Ballot{NoImposter: true}, false},
		{"no-imposter call on an imposterless round", none, Ballot{NoImposter: true}, true},
		{"accusation on an imposterless round", none, accuse("a"), false},
		{"both imposters named", two, accuse("d", "e"), true},
		{"only one of two named", two, accuse("d"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Correct(tc.r, tc.ballot); got != tc.want {
				t.Fatalf("Correct = %v, want %v", got, tc.want)
			}
		})
	}
}
