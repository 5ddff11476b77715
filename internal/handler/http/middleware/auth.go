package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// Verifier verifies a bearer token from the Authorization header or, failing
// that, from the named cookie.
func Verifier(ja *jwtauth.JWTAuth, cookieName string) func(http.Handler) http.Handler {
	return jwtauth.Verify(ja, jwtauth.TokenFromHeader, tokenFromCookie(cookieName))
}

func tokenFromCookie(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// RawToken returns the token the request authenticated with.
func RawToken(r *http.Request, cookieName string) string {
	if t := jwtauth.TokenFromHeader(r); t != "" {
		return t
	}
	return tokenFromCookie(cookieName)(r)
}

// AuthRequired rejects requests without a valid, unrevoked access token.
func AuthRequired(jwtService jwt.Service, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if jwtService.IsTokenRevoked(RawToken(r, cookieName)) {
				response.HandleError(w, auth.ErrTokenRevoked)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// IdentityFromContext builds the caller identity from verified token claims.
func IdentityFromContext(ctx context.Context) (auth.Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	return auth.Identity{
		UserID:  userID,
		Name:    name,
		Email:   email,
		IsAdmin: isAdmin,
	}, nil
}
