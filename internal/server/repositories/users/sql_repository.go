package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatshield/internal/common"
	"github.com/dmitrijs2005/chatshield/internal/dbx"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

type queries struct {
	create         string
	getPassword    string
	getByEmail     string
	updatePassword string
}

var postgresQueries = queries{
	create: `INSERT INTO users (username, password, email)
         VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING
		 `,
	getPassword: `SELECT password FROM users
		 WHERE username = $1
		 `,
	getByEmail: `SELECT username FROM users
		 WHERE email = $1
		 LIMIT 1
		 `,
	updatePassword: `UPDATE users SET password = $1
		 WHERE email = $2
		 `,
}

var sqliteQueries = queries{
	create: `INSERT INTO users (username, password, email)
         VALUES (?, ?, ?)
		 ON CONFLICT (username) DO NOTHING
		 `,
	getPassword: `SELECT password FROM users
		 WHERE username = ?
		 `,
	getByEmail: `SELECT username FROM users
		 WHERE email = ?
		 LIMIT 1
		 `,
	updatePassword: `UPDATE users SET password = ?
		 WHERE email = ?
		 `,
}

// SQLRepository implements Repository over database/sql. The Postgres and
// SQLite flavours differ only in their placeholder syntax.
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

func (r *SQLRepository) Create(ctx context.Context, account *models.Account) error {
	res, err := r.db.ExecContext(ctx, r.q.create, account.Username, account.Password, account.Email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := dbx.Affected(res)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}

	return nil
}

func (r *SQLRepository) GetPassword(ctx context.Context, username string) (string, error) {
	var password sql.NullString
	err := r.db.QueryRowContext(ctx, r.q.getPassword, username).Scan(&password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return password.String, nil
}

func (r *SQLRepository) GetUsernameByEmail(ctx context.Context, email string) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx, r.q.getByEmail, email).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return username, nil
}

func (r *SQLRepository) UpdatePasswordByEmail(ctx context.Context, email, password string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q.updatePassword, password, email)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := dbx.Affected(res)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
