package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
	adminPassword string
}

// NewAuthService wires the account service. An empty adminPassword disables
// admin sign-in.
func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service, adminPassword string) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
		adminPassword:  adminPassword,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	email := normalizeEmail(req.Email)
	_, err := a.UserRepository.GetByEmail(ctx, email)
	if err == nil {
		return auth.TokenResponse{}, user.ErrUserEmailExists
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := a.UserRepository.Create(ctx, user.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: &hashed,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return auth.TokenResponse{}, err
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return a.issue(created)
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !userData.HasPassword() {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issue(userData)
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, name string, googleEmail string, googleID string) (auth.TokenResponse, error) {
	email := normalizeEmail(googleEmail)

	userData, err := a.UserRepository.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		provider := "google"
		if strings.TrimSpace(name) == "" {
			name = email
		}
		userData, err = a.UserRepository.Create(ctx, user.User{
			Name:            strings.TrimSpace(name),
			Email:           email,
			OAuthProvider:   &provider,
			OAuthProviderID: &googleID,
		})
		if err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return auth.TokenResponse{}, fmt.Errorf("failed to get user data by email: %w", err)
	case userData.OAuthProviderID == nil:
		userData, err = a.UserRepository.LinkGoogleAccount(ctx, googleID, email)
		if err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
	}

	return a.issue(userData)
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, identity auth.Identity) (auth.UserResponse, error) {
	userData, err := a.UserRepository.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.UserResponse{}, auth.ErrUserNotFound
		}
		return auth.UserResponse{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return toUserResponse(userData), nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return auth.ErrInvalidToken
	}
	a.Service.RevokeToken(token)
	return nil
}

// VerifyAdmin implements auth.AuthService.
func (a *AuthServiceImpl) VerifyAdmin(ctx context.Context, req auth.VerifyAdminRequest) (auth.TokenResponse, error) {
	if a.adminPassword == "" {
		return auth.TokenResponse{}, auth.ErrAdminDisabled
	}
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Password)), []byte(a.adminPassword)) != 1 {
		return auth.TokenResponse{}, auth.ErrInvalidAdminPassword
	}

	token, expiresAt, err := a.Service.GenerateAdminToken()
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create admin token: %w", err)
	}
	return auth.TokenResponse{AccessToken: token, AccessTokenExpiresIn: expiresAt}, nil
}

func (a *AuthServiceImpl) issue(u user.User) (auth.TokenResponse, error) {
	token, expiresAt, err := a.Service.GenerateAccessToken(u.ID, u.Name, u.Email)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp := toUserResponse(u)
	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		User:                 &resp,
	}, nil
}

func toUserResponse(u user.User) auth.UserResponse {
	return auth.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
