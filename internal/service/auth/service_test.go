package auth

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/worklog-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessExp = "1h"
	testSecret    = "test-secret-key-for-jwt"
	testAdminPass = "hunter22"
)

func newTestAuthService(t *testing.T) (auth.AuthService, user.UserRepository, jwt.Service) {
	t.Helper()
	userRepo := memory.NewUserRepository()
	jwtService := jwt.NewJWTService(testSecret, testAccessExp, false)
	return NewAuthService(userRepo, jwtService, testAdminPass), userRepo, jwtService
}

func register(t *testing.T, svc auth.AuthService, email string) auth.TokenResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), auth.RegisterRequest{
		Name:     "Jane Doe",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp := register(t, svc, "Jane@Example.com")

	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.AccessTokenExpiresIn, int64(0))
	require.NotNil(t, resp.User)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, "Jane Doe", resp.User.Name)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	register(t, svc, "jane@example.com")

	_, err := svc.Register(context.Background(), auth.RegisterRequest{Name: "Jane", Email: "JANE@example.com", Password: "password123"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), auth.RegisterRequest{Name: "J", Email: "nope", Password: "short"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	register(t, svc, "jane@example.com")
	ctx := context.Background()

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_GoogleOnlyAccount(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.LoginWithGoogle(ctx, "Jane", "jane@example.com", "g-1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: "jane@example.com", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_LoginWithGoogle_LinksExistingUser(t *testing.T) {
	svc, userRepo, _ := newTestAuthService(t)
	ctx := context.Background()
	registered := register(t, svc, "jane@example.com")

	resp, err := svc.LoginWithGoogle(ctx, "Jane G", "jane@example.com", "g-42")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	stored, err := userRepo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.OAuthProviderID)
	assert.Equal(t, "g-42", *stored.OAuthProviderID)
	assert.True(t, stored.HasPassword())
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	registered := register(t, svc, "jane@example.com")

	me, err := svc.Me(context.Background(), auth.Identity{UserID: registered.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", me.Email)

	_, err = svc.Me(context.Background(), auth.Identity{UserID: "missing"})
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, _, jwtService := newTestAuthService(t)
	resp := register(t, svc, "jane@example.com")

	require.NoError(t, svc.Logout(context.Background(), resp.AccessToken))
	assert.True(t, jwtService.IsTokenRevoked(resp.AccessToken))

	assert.ErrorIs(t, svc.Logout(context.Background(), ""), auth.ErrInvalidToken)
}

func TestAuthService_VerifyAdmin(t *testing.T) {
	svc, _, jwtService := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.VerifyAdmin(ctx, auth.VerifyAdminRequest{Password: testAdminPass})
	require.NoError(t, err)
	token, err := jwtService.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	isAdmin, _ := token.Get("is_admin")
	assert.Equal(t, true, isAdmin)

	_, err = svc.VerifyAdmin(ctx, auth.VerifyAdminRequest{Password: "guess"})
	assert.ErrorIs(t, err, auth.ErrInvalidAdminPassword)

	_, err = svc.VerifyAdmin(ctx, auth.VerifyAdminRequest{})
	assert.ErrorIs(t, err, validator.ErrValidation)
}

func TestAuthService_VerifyAdmin_Disabled(t *testing.T) {
	svc := NewAuthService(memory.NewUserRepository(), jwt.NewJWTService(testSecret, testAccessExp, false), "")

	_, err := svc.VerifyAdmin(context.Background(), auth.VerifyAdminRequest{Password: "anything"})
	assert.ErrorIs(t, err, auth.ErrAdminDisabled)
}
