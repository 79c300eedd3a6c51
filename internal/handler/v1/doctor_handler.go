package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careops/hms-api/internal/domain/doctor"
	"github.com/careops/hms-api/internal/service"
)

type DoctorHandler struct {
	svc          *service.DoctorService
	appointments *service.AppointmentService
	patients     *service.PatientService
}

func NewDoctorHandler(svc *service.DoctorService, appointments *service.AppointmentService, patients *service.PatientService) *DoctorHandler {
	return &DoctorHandler{svc: svc, appointments: appointments, patients: patients}
}

type createDoctorRequest struct {
	EmployeeID      string     `json:"employee_id" binding:"required"`
	FirstName       string     `json:"first_name" binding:"required"`
	LastName        string     `json:"last_name" binding:"required"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Specialization  string     `json:"specialization"`
	LicenseNumber   string     `json:"license_number"`
	DepartmentID    *uuid.UUID `json:"department_id"`
	ConsultationFee float64    `json:"consultation_fee"`
	ExperienceYears int        `json:"experience_years"`
	AvailableFrom   string     `json:"available_from"`
	AvailableTo     string     `json:"available_to"`
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &doctor.CreateCommand{
		EmployeeID:      req.EmployeeID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Specialization:  req.Specialization,
		LicenseNumber:   req.LicenseNumber,
		DepartmentID:    req.DepartmentID,
		ConsultationFee: req.ConsultationFee,
		ExperienceYears: req.ExperienceYears,
		AvailableFrom:   req.AvailableFrom,
		AvailableTo:     req.AvailableTo,
	}

	d, err := h.svc.Create(c.Request.Context(), cmd, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DoctorHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type updateDoctorRequest struct {
	Email           *string    `json:"email"`
	Phone           *string    `json:"phone"`
	Specialization  *string    `json:"specialization"`
	LicenseNumber   *string    `json:"license_number"`
	DepartmentID    *uuid.UUID `json:"department_id"`
	ConsultationFee *float64   `json:"consultation_fee"`
	ExperienceYears *int       `json:"experience_years"`
	AvailableFrom   *string    `json:"available_from"`
	AvailableTo     *string    `json:"available_to"`
}

func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req updateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &doctor.UpdateCommand{
		Email:           req.Email,
		Phone:           req.Phone,
		Specialization:  req.Specialization,
		LicenseNumber:   req.LicenseNumber,
		DepartmentID:    req.DepartmentID,
		ConsultationFee: req.ConsultationFee,
		ExperienceYears: req.ExperienceYears,
		AvailableFrom:   req.AvailableFrom,
		AvailableTo:     req.AvailableTo,
	}

	d, err := h.svc.Update(c.Request.Context(), id, cmd, callerClaims(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DoctorHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, callerClaims(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "doctor deleted"})
}

func (h *DoctorHandler) Appointments(c *gin.Context) {
	id, ok := pathUUID(c, "id")
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

	list, err := h.appointments.ListByDoctor(c.Request.Context(), id, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DoctorHandler) Patients(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.patients.ListByDoctor(c.Request.Context(), id, callerClaims(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DoctorHandler) Stats(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stats, err := h.appointments.DoctorStats(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
