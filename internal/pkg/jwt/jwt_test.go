package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := NewJWTService("test-secret", "1h", false)

	token, exp, err := svc.GenerateAccessToken("u1", "Jane", "jane@example.com")
	require.NoError(t, err)
	assert.Greater(t, exp, int64(0))

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "jane@example.com", claims["email"])
	assert.Equal(t, false, claims["is_admin"])
}

func TestGenerateAdminToken_Claims(t *testing.T) {
	svc := NewJWTService("test-secret", "1h", false)

	token, _, err := svc.GenerateAdminToken()
	require.NoError(t, err)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	v, ok := decoded.Get("is_admin")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestGenerateAccessToken_BadExpiration(t *testing.T) {
	svc := NewJWTService("test-secret", "forever", false)
	_, _, err := svc.GenerateAccessToken("u1", "Jane", "jane@example.com")
	assert.Error(t, err)
}

func TestCookies(t *testing.T) {
	secure := NewJWTService("s", "1h", true)
	c := secure.AccessTokenCookie("tok", 100)
	assert.Equal(t, AccessTokenCookieName, c.Name)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)

	plain := NewJWTService("s", "1h", false)
	assert.Equal(t, http.SameSiteLaxMode, plain.AdminTokenCookie("tok", 100).SameSite)

	cleared := plain.ClearCookie(AdminTokenCookieName)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}

func TestRevokeToken(t *testing.T) {
	svc := NewJWTService("s", "1h", false)
	token, exp, err := svc.GenerateAccessToken("u1", "Jane", "jane@example.com")
	require.NoError(t, err)

	assert.False(t, svc.IsTokenRevoked(token))
	svc.RevokeToken(token)
	assert.True(t, svc.IsTokenRevoked(token))
	assert.Equal(t, exp, svc.(*JWTService).revokedTokens[token])

	svc.RevokeToken("not-a-token")
	assert.False(t, svc.IsTokenRevoked("not-a-token"))
}

func TestPruneRevoked_DropsExpiredTokens(t *testing.T) {
	svc := NewJWTService("s", "1h", false).(*JWTService)
	start := time.Now()
	svc.now = func() time.Time { return start }

	old, _, err := svc.GenerateAccessToken("u1", "Jane", "jane@example.com")
	require.NoError(t, err)
	svc.now = func() time.Time { return start.Add(30 * time.Minute) }
	fresh, _, err := svc.GenerateAccessToken("u2", "John", "john@example.com")
	require.NoError(t, err)
	svc.RevokeToken(old)
	svc.RevokeToken(fresh)

	svc.now = func() time.Time { return start.Add(61 * time.Minute) }
	require.NoError(t, svc.PruneRevoked(context.Background()))

	assert.False(t, svc.IsTokenRevoked(old))
	assert.True(t, svc.IsTokenRevoked(fresh))
	assert.Len(t, svc.revokedTokens, 1)
}
