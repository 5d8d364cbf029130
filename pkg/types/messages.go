package types

// Client -> Server (socket messages; the /api/game/* bodies carry the same
// fields with code + playerName standing in for the connection id)
//
// create-game:
//   playerName: string
//   custom: boolean
//   accountId?: string
//
// join-game:
//   code: string
//   playerName: string
//   accountId?: string
//
// rejoin-game:
//   code: string
//   playerName: string
//   claimsHost: boolean
//
// start-game: {}
//
// new-round: {}      // custom games return to host setup
// auto-round: {}     // custom host plays this one round; needs 4+ players
//
// custom-round:
//   category: string
//   word: string
//
// start-vote: {}
//
// submit-vote:
//   accused: string[]    // display names
//   noImposter: boolean  // mutually exclusive with accused
//
// reveal-imposter: {}
//
// get-state: {}

// Server -> Client
//
// game-created / joined-game / state: StateView
//   gameId, code, custom, phase: "lobby"|"playing",
//   votePhase: "idle"|"voting"|"revealed", needsSetup, hostName, isHost,
//   players: [{name, isHost, connected}], turnOrder: string[],
//   assignment?: {word, isImposter, turnOrder, turnOrderText, totalPlayers, roundVariant},
//   hostRound?: {category, word}, voted, required, reveal?
//
// player-joined / player-left: { players }
// new-host: { hostName }
// game-started / round-started: { players, turnOrder }
// round-reset: {}            // custom game heading back to host setup
// needs-setup: {}            // direct to the custom host
// your-word: assignment payload, direct to each playing player
// host-round: { category, word }, direct to a non-playing custom host
// vote-started / vote-update: { voted, required }
// imposter-revealed / reveal-result:
//   { imposterKeys, imposterNames, ejectedKey?, ejectedName?, wasTie,
//     ejectedWasImposter, teamWon, survivingImposterName?, category, word,
//     noImposterRound }
//
// error / join-error: { error }
