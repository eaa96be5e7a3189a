package repository

import (
	"context"
	"time"

	"physical-ai-textbook/internal/domain/model"
)

// -----------------------------
// Accounts (development backend)
// -----------------------------

// Account is a registered user as the backend stores it.
type Account struct {
	User         model.User
	PasswordHash []byte
	CreatedAt    time.Time
}

type AccountRepository interface {
	// Create assigns the user ID. Returns domain.ErrAlreadyExists on a duplicate email.
	Create(ctx context.Context, a *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
}
