package user

import (
	"context"
)

type UserRepository interface {
	// GetByEmail returns ErrUserNotFound when no user has the email.
	GetByEmail(ctx context.Context, email string) (User, error)
	// GetByID returns ErrUserNotFound when no user has the id.
	GetByID(ctx context.Context, id string) (User, error)
	// Create returns ErrUserEmailExists on a duplicate email.
	Create(ctx context.Context, newUser User) (User, error)
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
}
