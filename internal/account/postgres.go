package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresStore persists accounts and round results through gorm.
type PostgresStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func OpenPostgres(dsn string, log *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&User{}, &RoundResult{}); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, log: log}, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateNewUser(username, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	err = s.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *PostgresStore) SignIn(ctx context.Context, username, password string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStore) UserStats(ctx context.Context, id string) (*Stats, error) {
	var results []RoundResult
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).Find(&results).Error; err != nil {
		return nil, err
	}
	return statsFrom(results), nil
}

func (s *PostgresStore) RecordRoundResult(ctx context.Context, userID string, wasImposter, won, voteCorrect bool) error {
	return s.db.WithContext(ctx).Create(&RoundResult{
		ID:          uuid.NewString(),
		UserID:      userID,
		WasImposter: wasImposter,
		Won:         won,
		VoteCorrect: voteCorrect,
	}).Error
}

func (s *PostgresStore) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := s.db.WithContext(ctx).
		Table("users").
		Select(`users.id as user_id, users.username,
			count(round_results.id) as games,
			coalesce(sum(case when round_results.won then 1 else 0 end), 0) as wins,
			coalesce(sum(case when round_results.won and round_results.was_imposter then 1 else 0 end), 0) as imposter_wins,
			coalesce(sum(case when round_results.won and not round_results.was_imposter then 1 else 0 end), 0) as crew_wins`).
		Joins("left join round_results on round_results.user_id = users.id").
		Group("users.id, users.username").
		Order("wins desc, games desc").
		Scan(&entries).Error
	return entries, err
}

func statsFrom(results []RoundResult) *Stats {
	st := &Stats{}
	for _, r := range results {
		st.Games++
		if r.Won {
			st.Wins++
		}
		if r.WasImposter {
			st.ImposterGames++
			if r.Won {
				st.ImposterWins++
			}
		} else {
			st.CrewGames++
			if r.Won {
				st.CrewWins++
			}
			if r.VoteCorrect {
				st.CorrectVotes++
			}
		}
	}
	return st
}
