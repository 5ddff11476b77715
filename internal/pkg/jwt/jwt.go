package jwt

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	AccessTokenCookieName = "jwt"
	AdminTokenCookieName  = "admin_jwt"

	// AdminUserID is the subject carried by admin tokens.
	AdminUserID = "admin"
)

type Service interface {
	GenerateAccessToken(userID string, name string, email string) (token string, expiresAt int64, err error)
	GenerateAdminToken() (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	AccessTokenCookie(token string, expiresAt int64) *http.Cookie
	AdminTokenCookie(token string, expiresAt int64) *http.Cookie
	ClearCookie(name string) *http.Cookie
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
	PruneRevoked(ctx context.Context) error
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	cookieSecure              bool
	tokenAuth                 *jwtauth.JWTAuth
	// revokedTokens maps a revoked token to its exp claim.
	revokedTokens map[string]int64
	mu            sync.RWMutex
	now           func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string, cookieSecure bool) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		cookieSecure:              cookieSecure,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(userID string, name string, email string) (token string, expiresAt int64, err error) {
	expiresAt, err = j.expiry()
	if err != nil {
		return "", 0, err
	}

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":  userID,
		"name":     name,
		"email":    email,
		"is_admin": false,
		"type":     "access",
		"exp":      expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateAdminToken() (token string, expiresAt int64, err error) {
	expiresAt, err = j.expiry()
	if err != nil {
		return "", 0, err
	}

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":  AdminUserID,
		"is_admin": true,
		"type":     "access",
		"exp":      expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) expiry() (int64, error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return 0, err
	}
	return j.now().Add(expDuration).Unix(), nil
}

func (j *JWTService) AccessTokenCookie(token string, expiresAt int64) *http.Cookie {
	return j.cookie(AccessTokenCookieName, token, expiresAt)
}

func (j *JWTService) AdminTokenCookie(token string, expiresAt int64) *http.Cookie {
	return j.cookie(AdminTokenCookieName, token, expiresAt)
}

// ClearCookie returns a cookie that makes the browser drop name.
func (j *JWTService) ClearCookie(name string) *http.Cookie {
	c := j.cookie(name, "", 0)
	c.Expires = time.Unix(0, 0)
	c.MaxAge = -1
	return c
}

func (j *JWTService) cookie(name, token string, expiresAt int64) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if j.cookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.cookieSecure,
		SameSite: sameSite,
	}
}

// RevokeToken remembers token until its exp claim passes. Tokens that do not
// verify are ignored since they are rejected anyway.
func (j *JWTService) RevokeToken(token string) {
	decoded, err := j.tokenAuth.Decode(token)
	if err != nil {
		return
	}
	expiresAt := decoded.Expiration().Unix()
	if decoded.Expiration().IsZero() {
		if expiresAt, err = j.expiry(); err != nil {
			return
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// PruneRevoked drops revoked tokens whose exp has passed.
func (j *JWTService) PruneRevoked(ctx context.Context) error {
	now := j.now().Unix()

	j.mu.Lock()
	defer j.mu.Unlock()
	for token, expiresAt := range j.revokedTokens {
		if expiresAt < now {
			delete(j.revokedTokens, token)
		}
	}
	return nil
}
