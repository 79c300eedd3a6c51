package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/service"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// Slots answers GET /appointments/slots?doctorId=...&date=YYYY-MM-DD with the
// full grid partitioned into booked and available.
func (h *AppointmentHandler) Slots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctorId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "doctorId query parameter is required")
		return
	}
	date, err := parseDate(c.Query("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
		return
	}

	slots, err := h.svc.ListSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

type createAppointmentRequest struct {
	PatientID    uuid.UUID `json:"patient_id"`
	DoctorID     uuid.UUID `json:"doctor_id" binding:"required"`
	Date         string    `json:"appointment_date" binding:"required"`
	StartTime    string    `json:"appointment_time" binding:"required"`
	DurationMins int       `json:"duration_minutes"`
	Type         string    `json:"appointment_type"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason_for_visit"`
	Notes        string    `json:"notes"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "appointment_date must be YYYY-MM-DD")
		return
	}

	cmd := &appointment.CreateCommand{
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		Date:         date,
		StartTime:    req.StartTime,
		DurationMins: req.DurationMins,
		Type:         req.Type,
		Status:       req.Status,
		Reason:       req.Reason,
		Notes:        req.Notes,
	}

	a, err := h.svc.Book(c.Request.Context(), cmd, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ListByDoctor answers GET /appointments/doctor/:doctorId with an optional
// ?date=YYYY-MM-DD filter.
func (h *AppointmentHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := pathUUID(c, "doctorId")
	if !ok {
		return
	}

	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
			return
		}
		date = &d
	}

	list, err := h.svc.ListByDoctor(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type updateAppointmentRequest struct {
	Date         *string `json:"appointment_date"`
	StartTime    *string `json:"appointment_time"`
	DurationMins *int    `json:"duration_minutes"`
	Type         *string `json:"appointment_type"`
	Status       *string `json:"status"`
	Reason       *string `json:"reason_for_visit"`
	Notes        *string `json:"notes"`
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &appointment.UpdateCommand{
		StartTime:    req.StartTime,
		DurationMins: req.DurationMins,
		Type:         req.Type,
		Status:       req.Status,
		Reason:       req.Reason,
		Notes:        req.Notes,
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "appointment_date must be YYYY-MM-DD")
			return
		}
		cmd.Date = &d
	}

	a, err := h.svc.Update(c.Request.Context(), id, cmd, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.ChangeStatus(c.Request.Context(), id, req.Status, callerClaims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, callerClaims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment deleted"})
}
