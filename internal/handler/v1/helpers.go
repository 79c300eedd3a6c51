package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/domain/department"
	"github.com/careops/hms-api/internal/domain/doctor"
	"github.com/careops/hms-api/internal/domain/medicalrecord"
	"github.com/careops/hms-api/internal/domain/notification"
	"github.com/careops/hms-api/internal/domain/patient"
	"github.com/careops/hms-api/internal/handler/middleware"
	"github.com/careops/hms-api/internal/service"
	"github.com/careops/hms-api/pkg/auth"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError maps domain and service sentinels onto HTTP statuses.
// Unknown errors become opaque 500s; the access log carries the detail.
func respondServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": vErr.Fields})
		return
	}

	switch {
	case errors.Is(err, appointment.ErrSlotTaken),
		errors.Is(err, appointment.ErrPatientDoubleBooked),
		errors.Is(err, patient.ErrPatientAlreadyExists),
		errors.Is(err, doctor.ErrDoctorAlreadyExists),
		errors.Is(err, department.ErrDepartmentAlreadyExists),
		errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusConflict, err.Error())

	case errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, patient.ErrAttachmentNotFound),
		errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, department.ErrDepartmentNotFound),
		errors.Is(err, medicalrecord.ErrRecordNotFound),
		errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, appointment.ErrInvalidStatus),
		errors.Is(err, appointment.ErrDateRequired),
		errors.Is(err, appointment.ErrTimeRequired),
		errors.Is(err, appointment.ErrInvalidDuration),
		errors.Is(err, patient.ErrInvalidGender):
		respondError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenTypeMismatch):
		respondError(c, http.StatusUnauthorized, err.Error())

	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parseDate accepts YYYY-MM-DD.
func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func callerClaims(c *gin.Context) *domain.Claims {
	return middleware.ClaimsFrom(c)
}
