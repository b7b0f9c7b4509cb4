package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/chatshield/internal/common"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
	"github.com/dmitrijs2005/chatshield/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var _ RepositoryManager = &PostgresRepositoryManager{}
	var _ RepositoryManager = &SQLiteRepositoryManager{}

	var _ users.Repository = (&PostgresRepositoryManager{}).Users(db)
	var _ users.Repository = (&SQLiteRepositoryManager{}).Users(db)
}

func TestPostgresRunMigrations_UsesPostgresDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, (&PostgresRepositoryManager{}).RunMigrations(context.Background(), db))
	assert.Equal(t, "postgres", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err = (&PostgresRepositoryManager{}).RunMigrations(context.Background(), db)
	require.EqualError(t, err, "boom")
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://u:p@h:5432/db"))
	assert.True(t, IsPostgresDSN("postgresql://h/db"))
	assert.False(t, IsPostgresDSN("users.db"))
	assert.False(t, IsPostgresDSN("file::memory:"))
}

func TestOpen_SQLiteMigratesAndServesUsers(t *testing.T) {
	ctx := context.Background()

	db, m, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo := m.Users(db)
	require.NoError(t, repo.Create(ctx, &models.Account{Username: "alice", Password: "secret12", Email: "a@x.io"}))
	require.ErrorIs(t, repo.Create(ctx, &models.Account{Username: "alice", Password: "x", Email: "y"}), common.ErrorAlreadyExists)

	pw, err := repo.GetPassword(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "secret12", pw)

	// migrations are idempotent
	require.NoError(t, m.RunMigrations(ctx, db))
}
