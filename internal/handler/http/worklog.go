package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worklog-backend-go/internal/handler/http/response"
)

type WorklogHandler interface {
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	Punch(w http.ResponseWriter, r *http.Request)
	GetPunchStatus(w http.ResponseWriter, r *http.Request)
}

type worklogHandlerImpl struct {
	worklogService worklog.WorklogService
	now            func() time.Time
}

func NewWorklogHandler(worklogService worklog.WorklogService) WorklogHandler {
	return &worklogHandlerImpl{
		worklogService: worklogService,
		now:            time.Now,
	}
}

// GetProfile handles GET /me/employee
func (h *worklogHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	profile, err := h.worklogService.GetProfile(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, profile)
}

// UpdateProfile handles PATCH /me/employee
func (h *worklogHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req worklog.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	profile, err := h.worklogService.UpdateProfile(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile updated", profile)
}

// Punch handles POST /me/punch. The action comes from ?action= or a JSON
// body {"action": "start"|"end"}.
func (h *worklogHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := worklog.PunchRequest{Action: r.URL.Query().Get("action")}
	if strings.TrimSpace(req.Action) == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	action, err := worklog.ParseAction(req.Action)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employee, err := h.worklogService.ResolveEmployee(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.worklogService.Punch(r.Context(), employee.ID, action, h.now())
	if err != nil {
		slog.Info("Punch rejected", "employee_id", employee.ID, "action", action, "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetPunchStatus handles GET /me/punch/status
func (h *worklogHandlerImpl) GetPunchStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employee, err := h.worklogService.ResolveEmployee(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	status, err := h.worklogService.GetPunchStatus(r.Context(), employee.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}
