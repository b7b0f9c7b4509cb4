package users

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/chatshield/internal/common"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE users (username TEXT PRIMARY KEY, password TEXT, email TEXT)`)
	require.NoError(t, err)

	return NewSQLiteRepository(db)
}

func TestSQLite_CreateAndLookup(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Account{Username: "alice", Password: "secret12", Email: "a@x.io"}))

	pw, err := repo.GetPassword(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "secret12", pw)

	user, err := repo.GetUsernameByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	require.Equal(t, "alice", user)

	_, err = repo.GetPassword(ctx, "Alice")
	require.ErrorIs(t, err, common.ErrorNotFound, "lookups are exact-match")
}

func TestSQLite_CreateDuplicateWritesNothing(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Account{Username: "alice", Password: "first123", Email: "a@x.io"}))
	err := repo.Create(ctx, &models.Account{Username: "alice", Password: "second12", Email: "b@x.io"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	pw, err := repo.GetPassword(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "first123", pw)

	_, err = repo.GetUsernameByEmail(ctx, "b@x.io")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_UpdatePasswordByEmail(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Account{Username: "alice", Password: "secret12", Email: "a@x.io"}))

	n, err := repo.UpdatePasswordByEmail(ctx, "a@x.io", "changed1")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	pw, err := repo.GetPassword(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "changed1", pw)

	n, err = repo.UpdatePasswordByEmail(ctx, "none@x.io", "changed1")
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}
