package types

// ClientMessage is what arrives over the socket. The stateless HTTP bodies
// decode into the same struct so both transports share one translation path.
type ClientMessage struct {
	Type       string   `json:"type"`
	PlayerName string   `json:"playerName,omitempty"`
	AccountID  string   `json:"accountId,omitempty"`
	Code       string   `json:"code,omitempty"`
	Custom     bool     `json:"custom,omitempty"`
	Category   string   `json:"category,omitempty"`
	Word       string   `json:"word,omitempty"`
	Accused    []string `json:"accused,omitempty"`
	NoImposter bool     `json:"noImposter,omitempty"`
	ClaimsHost bool     `json:"claimsHost,omitempty"`
}

// ServerMessage is the event envelope fanned out to session members.
type ServerMessage struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type PlayerInfo struct {
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`
}

// WordPayload is a player's secret assignment, composed the way clients
// render it: imposters see the category with an IMPOSTER banner, everyone on
// an imposterless round is told so under their word.
type WordPayload struct {
	Word          string `json:"word"`
	IsImposter    bool   `json:"isImposter"`
	TurnOrder     int    `json:"turnOrder"`
	TurnOrderText string `json:"turnOrderText"`
	TotalPlayers  int    `json:"totalPlayers"`
	RoundVariant  string `json:"roundVariant"`
}

// HostRound is the custom host's observer view of the round in play.
type HostRound struct {
	Category string `json:"category"`
	Word     string `json:"word"`
}

type RoomUpdate struct {
	Players []PlayerInfo `json:"players"`
}

type NewHost struct {
	HostName string `json:"hostName"`
}

type RoundStarted struct {
	Players   []PlayerInfo `json:"players"`
	TurnOrder []string     `json:"turnOrder"`
}

type VoteUpdate struct {
	Voted    int `json:"voted"`
	Required int `json:"required"`
}
