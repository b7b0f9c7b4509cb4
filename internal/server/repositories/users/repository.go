package users

import (
	"context"

	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

// Repository is the durable credential store. Usernames arrive already
// normalised and are compared exactly.
type Repository interface {
	// Create inserts the account or fails with common.ErrorAlreadyExists,
	// writing nothing, when the username is taken.
	Create(ctx context.Context, account *models.Account) error
	// GetPassword returns the stored secret or common.ErrorNotFound.
	GetPassword(ctx context.Context, username string) (string, error)
	// GetUsernameByEmail returns the owner of email or common.ErrorNotFound.
	GetUsernameByEmail(ctx context.Context, email string) (string, error)
	// UpdatePasswordByEmail sets a new secret and reports how many accounts
	// were touched.
	UpdatePasswordByEmail(ctx context.Context, email, password string) (int64, error)
}
