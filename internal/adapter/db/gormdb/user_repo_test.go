package gormdb

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-record-service/internal/domain/user"
)

func testUser(name, value string) *user.User {
	return &user.User{Name: name, Value: value}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func setupTestRepo(t *testing.T) (*UserRepo, *gorm.DB) {
	t.Helper()
	db, _ := setupTestDB(t)
	log := zaptest.NewLogger(t)
	p := NewPooledProvider(db, log)
	require.NoError(t, EnsureSchema(context.Background(), p, log))
	return NewUserRepo(p, log), db
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	log := zaptest.NewLogger(t)
	p := NewPooledProvider(db, log)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, p, log))
	repo := NewUserRepo(p, log)
	_, err := repo.Create(ctx, testUser("keep", "me"))
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(ctx, p, log))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.True(t, db.Migrator().HasTable("users"))
}

func TestUserRepo_CreateAssignsIncreasingIDs(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, testUser("Test User", "123"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, testUser("Other", "456"))
	require.NoError(t, err)

	assert.Positive(t, first)
	assert.Greater(t, second, first)
}

func TestUserRepo_CreateNil(t *testing.T) {
	repo, _ := setupTestRepo(t)

	_, err := repo.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestUserRepo_List(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	id, err := repo.Create(ctx, testUser("Test User", "123"))
	require.NoError(t, err)

	users, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []user.User{{ID: id, Name: "Test User", Value: "123"}}, users)
}

func TestUserRepo_Update(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, testUser("Update Test", "initial"))
	require.NoError(t, err)
	idStr := formatID(id)

	tests := []struct {
		name     string
		id       string
		update   *user.User
		expected int64
	}{
		{"existing id", idStr, testUser("Updated User", "updated"), 1},
		{"same values still match", idStr, testUser("Updated User", "updated"), 1},
		{"missing id", "999999", testUser("x", "y"), 0},
		{"non numeric id", "abc", testUser("x", "y"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			affected, err := repo.Update(ctx, tt.id, tt.update)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, affected)
		})
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Updated User", users[0].Name)
	assert.Equal(t, "updated", users[0].Value)
}

func TestUserRepo_Delete(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, testUser("Delete Test", "123"))
	require.NoError(t, err)

	affected, err := repo.Delete(ctx, formatID(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Delete(ctx, formatID(id))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepo_StorageFailure(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.Create(ctx, testUser("a", "b"))
	assert.ErrorContains(t, err, "failed to create user")

	_, err = repo.List(ctx)
	assert.ErrorContains(t, err, "failed to list users")

	_, err = repo.Update(ctx, "1", testUser("a", "b"))
	assert.ErrorContains(t, err, "failed to update user")

	_, err = repo.Delete(ctx, "1")
	assert.ErrorContains(t, err, "failed to delete user")

	assert.ErrorContains(t, repo.Ping(ctx), "failed to ping database")
}

func TestUserRepo_ConcurrentCreates(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()

	// sqlite allows a single writer
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const n = 10
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Create(ctx, testUser("concurrent", "v"))
			if assert.NoError(t, err) {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
