// Package account is the boundary to user accounts and per-round stats. The
// game core only ever calls it fire-and-forget; nothing here may delay or
// fail a reveal.
package account

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUsernameTooShort   = errors.New("username must be at least 2 characters")
	ErrPasswordRequired   = errors.New("password required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	ProfilePic   string    `json:"profilePic,omitempty"`
	BgColor      string    `gorm:"default:#1a1a2e" json:"bgColor"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RoundResult struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index;not null" json:"userId"`
	WasImposter bool      `json:"wasImposter"`
	Won         bool      `json:"won"`
	VoteCorrect bool      `json:"voteCorrect"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Stats struct {
	Games         int `json:"games"`
	Wins          int `json:"wins"`
	ImposterGames int `json:"imposterGames"`
	ImposterWins  int `json:"imposterWins"`
	CrewGames     int `json:"crewGames"`
	CrewWins      int `json:"crewWins"`
	CorrectVotes  int `json:"correctVotes"`
}

type LeaderboardEntry struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Games        int    `json:"games"`
	Wins         int    `json:"wins"`
	ImposterWins int    `json:"imposterWins"`
	CrewWins     int    `json:"crewWins"`
}

type Store interface {
	CreateUser(ctx context.Context, username, password string) (*User, error)
	SignIn(ctx context.Context, username, password string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UserStats(ctx context.Context, id string) (*Stats, error)
	RecordRoundResult(ctx context.Context, userID string, wasImposter, won, voteCorrect bool) error
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}

func validateNewUser(username, password string) error {
	if len(username) < 2 {
		return ErrUsernameTooShort
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}
