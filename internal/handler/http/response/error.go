package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Report configuration errors
	var configErr *worklog.ConfigError
	if errors.As(err, &configErr) {
		BadRequest(w, configErr.Error(), map[string]string{configErr.Field: configErr.Message})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidAdminPassword):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token revoked")
	case errors.Is(err, auth.ErrAdminDisabled):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrGoogleLoginDisabled):
		NotFound(w, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")

	// User domain errors
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email is already registered")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Worklog domain errors
	case errors.Is(err, worklog.ErrSessionAlreadyRunning):
		Conflict(w, "Session already running.")
	case errors.Is(err, worklog.ErrNoActiveSession):
		Conflict(w, "No active session.")
	case errors.Is(err, worklog.ErrEmailExists):
		Conflict(w, "Email is already registered")
	case errors.Is(err, worklog.ErrConflict):
		Conflict(w, err.Error())
	case errors.Is(err, worklog.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, worklog.ErrNotFound):
		NotFound(w, err.Error())

	// Export errors
	case errors.Is(err, export.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), map[string]string{"type": "type must be one of csv, xlsx, pdf"})

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
