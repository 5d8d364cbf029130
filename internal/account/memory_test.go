package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAndSignIn(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "  alice  ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "hunter2", u.PasswordHash)

	signed, err := s.SignIn(ctx, "ALICE", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, signed.ID)

	_, err = s.SignIn(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.SignIn(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "a", "pw")
	assert.ErrorIs(t, err, ErrUsernameTooShort)
	_, err = s.CreateUser(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = s.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "Alice", "pw")
	assert.ErrorIs(t, err, ErrUsernameTaken, "username uniqueness is case-insensitive")
}

func TestGetUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserStatsAggregation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, s.RecordRoundResult(ctx, u.ID, true, true, false))
	require.NoError(t, s.RecordRoundResult(ctx, u.ID, false, true, true))
	require.NoError(t, s.RecordRoundResult(ctx, u.ID, false, false, false))

	st, err := s.UserStats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Games)
	assert.Equal(t, 2, st.Wins)
	assert.Equal(t, 1, st.ImposterGames)
	assert.Equal(t, 1, st.ImposterWins)
	assert.Equal(t, 2, st.CrewGames)
	assert.Equal(t, 1, st.CrewWins)
	assert.Equal(t, 1, st.CorrectVotes)
}

func TestStatsForUnknownUserAreZero(t *testing.T) {
	s := NewMemoryStore()

	st, err := s.UserStats(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, &Stats{}, st)
}

func TestLeaderboardOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "bob", "pw")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "carol", "pw")
	require.NoError(t, err)

	require.NoError(t, s.RecordRoundResult(ctx, alice.ID, false, true, true))
	require.NoError(t, s.RecordRoundResult(ctx, alice.ID, true, true, false))
	require.NoError(t, s.RecordRoundResult(ctx, bob.ID, false, true, false))

	entries, err := s.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 2, entries[0].Wins)
	assert.Equal(t, 1, entries[0].ImposterWins)
	assert.Equal(t, 1, entries[0].CrewWins)
	assert.Equal(t, "bob", entries[1].Username)
	assert.Equal(t, "carol", entries[2].Username)
	assert.Equal(t, 0, entries[2].Games)
}
