package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	LoginWithGoogle(ctx context.Context, name string, email string, googleID string) (TokenResponse, error)
	Me(ctx context.Context, identity Identity) (UserResponse, error)
	Logout(ctx context.Context, token string) error

	// VerifyAdmin checks the shared admin password and issues an admin token.
	VerifyAdmin(ctx context.Context, req VerifyAdminRequest) (TokenResponse, error)
}
