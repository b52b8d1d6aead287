package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/greenhabit/config"
	"github.com/cppla/greenhabit/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.AppConfig{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "store.sqlite"),
		LogLevel: "silent",
	}
	db, err := config.OpenDatabase(cfg, models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db, 5*time.Second)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return New(db, time.Second), mock
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = s.CreateUser(ctx, "alice", "other")
	require.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestFindUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)

	byName, err := s.FindUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := s.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Username)

	_, err = s.FindUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindUserByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteTask_OncePerDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "carol", "hash")
	require.NoError(t, err)

	reward, err := s.CompleteTask(ctx, u.ID, "2024-03-15", "Eco Star — completed task on 2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "Eco Star — completed task on 2024-03-15", reward.Reward)

	_, err = s.CompleteTask(ctx, u.ID, "2024-03-15", "again")
	require.ErrorIs(t, err, ErrAlreadyCompleted)

	row, err := s.FindCompletion(ctx, u.ID, "2024-03-15")
	require.NoError(t, err)
	assert.True(t, row.Done)

	rewards, err := s.ListRewards(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rewards, 1)

	// A different day is a fresh claim.
	_, err = s.CompleteTask(ctx, u.ID, "2024-03-16", "next day")
	require.NoError(t, err)
}

func TestCompleteTask_ConcurrentClaimsYieldOneReward(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "dave", "hash")
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		already   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CompleteTask(ctx, u.ID, "2024-03-15", "reward")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrAlreadyCompleted):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, already)

	rewards, err := s.ListRewards(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, rewards, 1)
}

func TestListRewards_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "erin", "hash")
	require.NoError(t, err)
	other, err := s.CreateUser(ctx, "frank", "hash")
	require.NoError(t, err)

	for _, text := range []string{"first", "second", "third"} {
		_, err := s.CreateReward(ctx, u.ID, text)
		require.NoError(t, err)
	}
	_, err = s.CreateReward(ctx, other.ID, "not mine")
	require.NoError(t, err)

	rewards, err := s.ListRewards(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rewards, 3)
	assert.Equal(t, "third", rewards[0].Reward)
	assert.Equal(t, "second", rewards[1].Reward)
	assert.Equal(t, "first", rewards[2].Reward)

	none, err := s.ListRewards(ctx, u.ID+other.ID+10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCompletionDates_Range(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "gina", "hash")
	require.NoError(t, err)

	for _, d := range []string{"2024-02-28", "2024-03-01", "2024-03-10"} {
		_, err := s.CompleteTask(ctx, u.ID, d, "r")
		require.NoError(t, err)
	}

	got, err := s.CompletionDates(ctx, u.ID, "2024-03-01", "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2024-03-01": true, "2024-03-10": true}, got)
}

func TestSeedTips_OnlyWhenEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.SeedTips(ctx, DefaultTips)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedTips(ctx, []string{"should not be inserted"})
	require.NoError(t, err)
	assert.False(t, seeded)

	tips, err := s.ListTips(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTips, tips)
}

func TestListTips_Empty(t *testing.T) {
	s := newTestStore(t)
	tips, err := s.ListTips(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tips)
}

func TestFindUserByUsername_DBError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset by peer"))

	_, err := s.FindUserByUsername(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset by peer")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_MySQLDuplicateEntry(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'idx_users_username'"))
	mock.ExpectRollback()

	_, err := s.CreateUser(context.Background(), "alice", "hash")
	require.ErrorIs(t, err, ErrDuplicateUsername)
	require.NoError(t, mock.ExpectationsWereMet())
}
