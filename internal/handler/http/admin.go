package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/jwt"
)

type AdminHandler interface {
	VerifyAdmin(w http.ResponseWriter, r *http.Request)
	Session(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
}

func NewAdminHandler(jwtService jwt.Service, authService auth.AuthService) AdminHandler {
	return &adminHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
	}
}

// VerifyAdmin handles POST /admin/verify-admin
func (h *adminHandlerImpl) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := h.authService.VerifyAdmin(r.Context(), req)
	if err != nil {
		slog.Warn("Admin verification failed", "error", err, "remote_addr", r.RemoteAddr)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, h.jwtService.AdminTokenCookie(tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn))
	slog.Info("Admin session started")
	response.SuccessWithMessage(w, "Admin verified", tokenResponse)
}

// Session handles GET /admin/session
func (h *adminHandlerImpl) Session(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, map[string]bool{"isAdmin": identity.IsAdmin})
}

// Logout handles POST /admin/logout
func (h *adminHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.RawToken(r, jwt.AdminTokenCookieName); token != "" {
		if err := h.authService.Logout(r.Context(), token); err != nil {
			response.HandleError(w, err)
			return
		}
	}
	http.SetCookie(w, h.jwtService.ClearCookie(jwt.AdminTokenCookieName))
	response.SuccessWithMessage(w, "Admin logged out", nil)
}
