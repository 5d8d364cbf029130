package account

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryStore keeps accounts in process memory. Used in tests and when no
// DATABASE_URL is configured; everything is lost on restart, same as the
// game sessions themselves.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*User
	results map[string][]RoundResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*User),
		results: make(map[string][]RoundResult),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateNewUser(username, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return nil, ErrUsernameTaken
		}
	}
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStore) SignIn(_ context.Context, username, password string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
				return nil, ErrInvalidCredentials
			}
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) UserStats(_ context.Context, id string) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return statsFrom(s.results[id]), nil
}

func (s *MemoryStore) RecordRoundResult(_ context.Context, userID string, wasImposter, won, voteCorrect bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[userID] = append(s.results[userID], RoundResult{
		ID:          uuid.NewString(),
		UserID:      userID,
		WasImposter: wasImposter,
		Won:         won,
		VoteCorrect: voteCorrect,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (s *MemoryStore) Leaderboard(_ context.Context) ([]LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]LeaderboardEntry, 0, len(s.users))
	for id, u := range s.users {
		e := LeaderboardEntry{UserID: id, Username: u.Username}
		for _, r := range s.results[id] {
			e.Games++
			if r.Won {
				e.Wins++
				if r.WasImposter {
					e.ImposterWins++
				} else {
					e.CrewWins++
				}
			}
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Games > entries[j].Games
	})
	return entries, nil
}
