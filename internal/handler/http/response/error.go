package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Scan and timekeeping errors
	case errors.Is(err, attendance.ErrInvalidTimeFormat):
		Fail(w, http.StatusUnprocessableEntity, "INVALID_TIME_FORMAT", err.Error())
	case errors.Is(err, attendance.ErrInvalidTimeWindow):
		Fail(w, http.StatusUnprocessableEntity, "INVALID_TIME_WINDOW", err.Error())
	case errors.Is(err, attendance.ErrUnknownEmployee):
		Fail(w, http.StatusNotFound, "UNRECOGNIZED_CODE", "Unrecognized code")
	case errors.Is(err, attendance.ErrAlreadyClosed):
		Fail(w, http.StatusConflict, "ALREADY_CLOSED", "Attendance already completed today")
	case errors.Is(err, attendance.ErrStoreUnavailable):
		slog.Error("attendance store unavailable", "error", err)
		ServiceUnavailable(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAttendanceExists):
		Conflict(w, "Attendance already recorded for this date")
	case errors.Is(err, attendance.ErrCheckOutWithoutIn):
		BadRequest(w, err.Error(), nil)

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrWrongTokenType):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenCookieNotFound), errors.Is(err, auth.ErrRefreshTokenCookieEmpty):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrNoSession):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, auth.ErrGoogleAccountNotRegistered):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// User domain errors
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrInvalidPassword):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrCannotDeleteSelf), errors.Is(err, user.ErrCannotDemoteSelf):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrMatriculeExists):
		Conflict(w, "Matricule already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrInvalidPhoto):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrEmployeeInactive):
		Conflict(w, "Employee is inactive")
	case errors.Is(err, employee.ErrPhotoNotFound):
		NotFound(w, "Employee has no photo")

	// Salary advances
	case errors.Is(err, advance.ErrAdvanceNotFound):
		NotFound(w, "Salary advance not found")
	case errors.Is(err, advance.ErrAmountNotPositive):
		BadRequest(w, err.Error(), nil)

	// Settings and reports
	case errors.Is(err, settings.ErrSettingsNotFound):
		NotFound(w, "Attendance settings not found")
	case errors.Is(err, report.ErrInvalidMonth), errors.Is(err, report.ErrInvalidYear), errors.Is(err, report.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)

	// Files
	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, storage.ErrInvalidPath):
		BadRequest(w, "Invalid file path", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
